package client

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"zktls-por/shared"
)

// MaxIndexedAccounts bounds the BINANCE_API_KEY{i} scan.
const MaxIndexedAccounts = 100

const defaultRecvWindowSeconds = 60

var (
	ErrNoAccounts        = errors.New("no BINANCE_API_KEY{i} / BINANCE_API_SECRET{i} pair configured")
	ErrDuplicateAPIKey   = errors.New("duplicate BINANCE_API_KEY{i} detected")
	ErrUnexpectedRequest = errors.New("request does not target the expected endpoint")
	ErrRequestCount      = errors.New("invalid number of requests")
)

// Account is one exchange API credential pair.
type Account struct {
	Key    string
	Secret string
}

// LoadAccounts collects BINANCE_API_KEY/BINANCE_API_SECRET followed by the
// indexed pairs 1..MaxIndexedAccounts. Pairs with either half unset are skipped.
func LoadAccounts() ([]Account, error) {
	var accounts []Account
	add := func(suffix string) {
		key := os.Getenv("BINANCE_API_KEY" + suffix)
		secret := os.Getenv("BINANCE_API_SECRET" + suffix)
		if key != "" && secret != "" {
			accounts = append(accounts, Account{Key: key, Secret: secret})
		}
	}
	add("")
	for i := 1; i <= MaxIndexedAccounts; i++ {
		add(strconv.Itoa(i))
	}

	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}

	seen := make(map[Account]struct{}, len(accounts))
	for _, acc := range accounts {
		if _, dup := seen[acc]; dup {
			return nil, ErrDuplicateAPIKey
		}
		seen[acc] = struct{}{}
	}
	return accounts, nil
}

// RecvWindow returns the request validity window in milliseconds from
// BINANCE_RECV_WINDOW (seconds, default 60).
func RecvWindow() int64 {
	seconds := shared.GetEnvIntOrDefault("BINANCE_RECV_WINDOW", defaultRecvWindowSeconds)
	if seconds <= 0 {
		seconds = defaultRecvWindowSeconds
	}
	return int64(seconds) * 1000
}

// OrigRequest is a signed exchange request before it is turned into prover
// request parameters.
type OrigRequest struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
}

// queryParam keeps query parameters in the order they are signed.
type queryParam struct {
	key, value string
}

// Sign builds a signed GET request against baseURL. The query is
// recvWindow, then extra, then timestamp; the signature is the hex
// HMAC-SHA256 of that query under the account secret.
func (a Account) Sign(baseURL string, now time.Time, recvWindow int64, extra ...queryParam) OrigRequest {
	params := make([]queryParam, 0, len(extra)+2)
	params = append(params, queryParam{"recvWindow", strconv.FormatInt(recvWindow, 10)})
	params = append(params, extra...)
	params = append(params, queryParam{"timestamp", strconv.FormatInt(now.UnixMilli(), 10)})

	query := ""
	for i, p := range params {
		if i > 0 {
			query += "&"
		}
		query += p.key + "=" + p.value
	}

	mac := hmac.New(sha256.New, []byte(a.Secret))
	mac.Write([]byte(query))
	signature := hex.EncodeToString(mac.Sum(nil))

	return OrigRequest{
		URL:     fmt.Sprintf("%s?%s&signature=%s", baseURL, query, signature),
		Headers: map[string]string{"X-MBX-APIKEY": a.Key},
	}
}

// UnifiedOrigRequests produces, per account, a position-risk request
// immediately followed by a balance request.
func UnifiedOrigRequests(accounts []Account, now time.Time, recvWindow int64) []OrigRequest {
	out := make([]OrigRequest, 0, 2*len(accounts))
	for _, acc := range accounts {
		out = append(out,
			acc.Sign(shared.RiskURL, now, recvWindow),
			acc.Sign(shared.BalanceURL, now, recvWindow))
	}
	return out
}

// SpotOrigRequests produces one spot account request per account.
func SpotOrigRequests(accounts []Account, now time.Time, recvWindow int64) []OrigRequest {
	out := make([]OrigRequest, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, acc.Sign(shared.SpotBalanceURL, now, recvWindow, queryParam{"omitZeroBalances", "true"}))
	}
	return out
}
