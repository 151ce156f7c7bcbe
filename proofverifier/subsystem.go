package proofverifier

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"zktls-por/attestation"
	"zktls-por/shared"
)

var (
	riskPaths           = []string{"$.[*].symbol", "$.[*].entryPrice"}
	unifiedBalancePaths = []string{"$.[*].asset", "$.[*].totalWalletBalance", "$.[*].umUnrealizedPNL"}
	uidPaths            = []string{"$.uid"}
	spotBalancePaths    = []string{"$.balances[*].asset", "$.balances[*].free", "$.balances[*].locked"}
)

// accountKey identifies the source account of one response for duplicate detection.
type accountKey struct {
	value string
	ok    bool
}

// endpointRule describes how responses from one permitted endpoint are checked and folded.
type endpointRule struct {
	url string
	// evenIndexOnly requires the request to sit at an even transcript index.
	evenIndexOnly bool
	handle        func(msg attestation.Message, acc AssetBalances) (accountKey, *ZkError)
}

// Subsystem is one account type together with its permitted endpoints.
type Subsystem struct {
	Name string
	// RequirePairs rejects an odd number of requests.
	RequirePairs bool
	endpoints    []endpointRule
}

// UnifiedSubsystem validates the portfolio-margin account: position-risk and
// balance calls strictly alternating, duplicates detected by position signature.
var UnifiedSubsystem = &Subsystem{
	Name:         "unified",
	RequirePairs: true,
	endpoints: []endpointRule{
		{url: shared.RiskURL, evenIndexOnly: true, handle: positionSignature},
		{url: shared.BalanceURL, handle: foldUnifiedBalances},
	},
}

// SpotSubsystem validates the spot account: one call per account, duplicates
// detected by uid.
var SpotSubsystem = &Subsystem{
	Name: "spot",
	endpoints: []endpointRule{
		{url: shared.SpotBalanceURL, handle: spotAccount},
	},
}

// BaseURLs lists the endpoints this subsystem may reference, in declaration order.
func (s *Subsystem) BaseURLs() []string {
	urls := make([]string, len(s.endpoints))
	for i, e := range s.endpoints {
		urls[i] = e.url
	}
	return urls
}

func (s *Subsystem) ruleFor(rawURL string) (endpointRule, bool) {
	for _, e := range s.endpoints {
		if strings.HasPrefix(rawURL, e.url) {
			return e, true
		}
	}
	return endpointRule{}, false
}

// Validate verifies payload restricted to this subsystem's endpoints, walks its
// request/response pairs in order and folds balances into acc. On success the
// returned metadata is fully populated.
func (s *Subsystem) Validate(v Verifier, payload string, cfg attestation.AttestationConfig, acc AssetBalances, logger *zap.Logger) (AttestationMeta, *ZkError) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("subsystem", s.Name))

	var meta AttestationMeta

	var doc interface{}
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return meta, zkerr(ParseAttestationData, err.Error())
	}
	var ok bool
	if meta.TaskID, ok = publicDataString(doc, "taskId"); !ok {
		return meta, zkerr(GetTaskIdFail)
	}
	if meta.ReportTxHash, ok = publicDataString(doc, "reportTxHash"); !ok {
		return meta, zkerr(GetReportTxHashFail)
	}
	if meta.Attestor, ok = publicDataString(doc, "attestor"); !ok {
		return meta, zkerr(GetAttestorAddressFail)
	}
	meta.BaseURLs = s.BaseURLs()

	cfg = cfg.Clone()
	cfg.URL = s.BaseURLs()
	data, _, messages, err := v.Verify(payload, cfg)
	if err != nil {
		return meta, zkerr(VerifyAttestation, err.Error())
	}
	if data == nil || len(data.PublicData) == 0 {
		return meta, zkerr(VerifyAttestation, "no public data")
	}

	requests := data.PublicData[0].Attestation.Request
	if s.RequirePairs && len(requests)%2 != 0 {
		return meta, zkerr(InvalidRequestLength)
	}
	if len(requests) != len(messages) {
		return meta, zkerr(InvalidMessagesLength)
	}

	meta.Timestamp = math.MaxUint64
	keys := make([]string, 0, len(requests))
	for i, req := range requests {
		ts, zerr := requestTimestamp(req.URL)
		if zerr != nil {
			return meta, zerr
		}
		meta.Timestamp = min(meta.Timestamp, ts)

		rule, found := s.ruleFor(req.URL)
		if !found {
			return meta, zkerr(InvalidRequestUrl, req.URL)
		}
		if rule.evenIndexOnly && i%2 != 0 {
			return meta, zkerr(InvalidRequestOrder, "index "+strconv.Itoa(i))
		}

		key, zerr := rule.handle(messages[i], acc)
		if zerr != nil {
			return meta, zerr
		}
		if key.ok {
			keys = append(keys, key.value)
		}
		logger.Debug("Request validated",
			zap.Int("index", i),
			zap.String("endpoint", rule.url),
			zap.Uint64("timestamp", ts))
	}

	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			return meta, zkerr(DuplicateAccount)
		}
		seen[k] = struct{}{}
	}

	logger.Debug("Subsystem validated",
		zap.Int("requests", len(requests)),
		zap.Int("accounts", len(keys)),
		zap.Uint64("timestamp", meta.Timestamp))
	return meta, nil
}

// publicDataString reads public_data[0].<key> as a string.
func publicDataString(doc interface{}, key string) (string, bool) {
	root, ok := doc.(map[string]interface{})
	if !ok {
		return "", false
	}
	list, ok := root["public_data"].([]interface{})
	if !ok || len(list) == 0 {
		return "", false
	}
	item, ok := list[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	s, ok := item[key].(string)
	return s, ok
}

// requestTimestamp reads the value between the first "timestamp=" and the next '&'.
func requestTimestamp(rawURL string) (uint64, *ZkError) {
	parts := strings.Split(rawURL, "timestamp=")
	if len(parts) < 2 {
		return 0, zkerr(CannotFoundTimestamp)
	}
	value, _, _ := strings.Cut(parts[1], "&")
	if value == "" {
		return 0, zkerr(CannotFoundTimestamp)
	}
	ts, err := strconv.ParseUint(strings.TrimPrefix(value, "+"), 10, 64)
	if err != nil {
		return 0, zkerr(ParseTimestampFailed, value)
	}
	return ts, nil
}

// extractColumns runs paths against msg and checks every path produced the
// same number of matches.
func extractColumns(msg attestation.Message, paths []string) ([]string, int, *ZkError) {
	values, err := msg.GetJSONValues(paths)
	if err != nil {
		return nil, 0, zkerr(GetJsonValueFail, err.Error())
	}
	if len(values)%len(paths) != 0 {
		return nil, 0, zkerr(InvalidJsonValueSize, strconv.Itoa(len(values))+" values for "+strconv.Itoa(len(paths))+" paths")
	}
	return values, len(values) / len(paths), nil
}

// foldColumns adds, for each row, the sum of columns 1..n-1 under the
// uppercased symbol in column 0. A running total that leaves the float64
// range is rejected since it cannot be committed.
func foldColumns(values []string, rows, width int, acc AssetBalances) *ZkError {
	for j := 0; j < rows; j++ {
		asset := asciiUpper(trimQuotes(values[j]))
		contribution := 0.0
		for k := 1; k < width; k++ {
			contribution += parseAmount(values[k*rows+j])
		}
		acc.Add(asset, contribution)
		if math.IsInf(acc[asset], 0) {
			return zkerr(GetJsonValueFail, "balance of "+asset+" overflows float64")
		}
	}
	return nil
}

// positionSignature fingerprints an account by its sorted SYMBOL:entryPrice set.
func positionSignature(msg attestation.Message, _ AssetBalances) (accountKey, *ZkError) {
	values, rows, zerr := extractColumns(msg, riskPaths)
	if zerr != nil {
		return accountKey{}, zerr
	}
	prices := make([]string, rows)
	for j := 0; j < rows; j++ {
		prices[j] = asciiUpper(trimQuotes(values[j])) + ":" + trimQuotes(values[rows+j])
	}
	sort.Strings(prices)
	return accountKey{value: strings.Join(prices, ","), ok: true}, nil
}

// foldUnifiedBalances adds totalWalletBalance + umUnrealizedPNL per asset.
func foldUnifiedBalances(msg attestation.Message, acc AssetBalances) (accountKey, *ZkError) {
	values, rows, zerr := extractColumns(msg, unifiedBalancePaths)
	if zerr != nil {
		return accountKey{}, zerr
	}
	if zerr := foldColumns(values, rows, len(unifiedBalancePaths), acc); zerr != nil {
		return accountKey{}, zerr
	}
	return accountKey{}, nil
}

// spotAccount keys the account by uid and adds free + locked per asset.
func spotAccount(msg attestation.Message, acc AssetBalances) (accountKey, *ZkError) {
	uid, err := msg.GetJSONValues(uidPaths)
	if err != nil {
		return accountKey{}, zkerr(GetJsonValueFail, err.Error())
	}
	if len(uid) != 1 {
		return accountKey{}, zkerr(InvalidJsonValueSize, "uid")
	}

	values, rows, zerr := extractColumns(msg, spotBalancePaths)
	if zerr != nil {
		return accountKey{}, zerr
	}
	if zerr := foldColumns(values, rows, len(spotBalancePaths), acc); zerr != nil {
		return accountKey{}, zerr
	}
	return accountKey{value: trimQuotes(uid[0]), ok: true}, nil
}
