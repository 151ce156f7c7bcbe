package proofverifier

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gocarina/gocsv"
)

// Committer persists the public values of a run.
type Committer interface {
	Commit(pv *PublicValues) error
}

// Commitment is the committed artifact: the public values and the keccak256
// digest of their canonical JSON encoding.
type Commitment struct {
	PublicValues *PublicValues `json:"publicValues"`
	Digest       string        `json:"digest"`
}

func NewCommitment(pv *PublicValues) (*Commitment, error) {
	b, err := json.Marshal(pv)
	if err != nil {
		return nil, fmt.Errorf("failed to encode public values: %w", err)
	}
	return &Commitment{PublicValues: pv, Digest: crypto.Keccak256Hash(b).Hex()}, nil
}

// JSONCommitter writes the commitment as indented JSON.
type JSONCommitter struct {
	w io.Writer
}

func NewJSONCommitter(w io.Writer) *JSONCommitter {
	return &JSONCommitter{w: w}
}

func (c *JSONCommitter) Commit(pv *PublicValues) error {
	commitment, err := NewCommitment(pv)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(commitment); err != nil {
		return fmt.Errorf("failed to write commitment: %w", err)
	}
	return nil
}

// BalanceRow is one line of the balance table export.
type BalanceRow struct {
	Asset   string  `csv:"asset"`
	Balance float64 `csv:"balance"`
}

// MarshalBalancesCSV renders the balance table sorted by label.
func MarshalBalancesCSV(pv *PublicValues) ([]byte, error) {
	rows := make([]*BalanceRow, 0, len(pv.AssetBalance))
	for asset, bal := range pv.AssetBalance {
		rows = append(rows, &BalanceRow{Asset: asset, Balance: bal})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Asset < rows[j].Asset })
	return gocsv.MarshalBytes(&rows)
}
