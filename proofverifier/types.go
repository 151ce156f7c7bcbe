package proofverifier

import (
	"math"
	"strconv"
	"strings"

	"zktls-por/attestation"
)

// Verifier is the attestation verification primitive the validators rely on.
// *attestation.Verifier satisfies it.
type Verifier interface {
	Verify(payload string, cfg attestation.AttestationConfig) (*attestation.AttestationData, []byte, []attestation.Message, error)
}

// AttestationMeta describes one validated account subsystem.
type AttestationMeta struct {
	TaskID       string   `json:"taskId"`
	ReportTxHash string   `json:"reportTxHash"`
	Attestor     string   `json:"attestor"`
	BaseURLs     []string `json:"baseUrls"`
	Timestamp    uint64   `json:"timestamp"` // minimum request timestamp, ms
}

// PublicValues is the single committed output of a run. A nonzero Status
// means every other field must be ignored.
type PublicValues struct {
	Status          uint32             `json:"status"`
	AttestationMeta []AttestationMeta  `json:"attestationMeta"`
	AssetBalance    map[string]float64 `json:"assetBalance"`
}

func newPublicValues() *PublicValues {
	return &PublicValues{
		AttestationMeta: []AttestationMeta{},
		AssetBalance:    map[string]float64{},
	}
}

// AssetBalances accumulates per-asset totals across both subsystems. Keys are
// ASCII-uppercase symbols.
type AssetBalances map[string]float64

// Add folds amount into symbol's running total.
func (a AssetBalances) Add(symbol string, amount float64) {
	a[symbol] += amount
}

// trimQuotes strips every leading and trailing double quote from a raw JSON value.
func trimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// asciiUpper uppercases ASCII letters only, leaving other bytes untouched.
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// parseAmount reads a balance-bearing field. Anything that is not a finite
// number counts as zero.
func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(trimQuotes(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
