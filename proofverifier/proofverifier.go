package proofverifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrDigestMismatch  = errors.New("commitment digest does not match public values")
	ErrMissingValues   = errors.New("commitment has no public values")
	ErrFailedStatus    = errors.New("committed run did not succeed")
	ErrMalformedOutput = errors.New("successful commitment is malformed")
)

// Validate loads a commitment file written by JSONCommitter and performs the
// checks a downstream consumer should run before trusting it: the digest
// matches the public values, the status is success, and a successful output
// carries both subsystem records and the pooled label.
func Validate(commitmentPath string, policy Policy) (*PublicValues, error) {
	data, err := os.ReadFile(commitmentPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open commitment: %v", err)
	}

	var c Commitment
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode commitment JSON: %v", err)
	}
	if c.PublicValues == nil {
		return nil, ErrMissingValues
	}

	// --- Digest ---
	recomputed, err := NewCommitment(c.PublicValues)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(recomputed.Digest, c.Digest) {
		return nil, fmt.Errorf("%w: committed %s, recomputed %s", ErrDigestMismatch, c.Digest, recomputed.Digest)
	}

	pv := c.PublicValues

	// --- Status ---
	if pv.Status != uint32(Success) {
		return pv, fmt.Errorf("%w: status %d (%s)", ErrFailedStatus, pv.Status, ZkErrorCode(pv.Status))
	}

	// --- Shape ---
	if len(pv.AttestationMeta) != 2 {
		return pv, fmt.Errorf("%w: %d attestation records", ErrMalformedOutput, len(pv.AttestationMeta))
	}
	if _, ok := pv.AssetBalance[policy.PooledLabel]; !ok {
		return pv, fmt.Errorf("%w: pooled label %s missing", ErrMalformedOutput, policy.PooledLabel)
	}
	for asset := range pv.AssetBalance {
		if asset != asciiUpper(asset) {
			return pv, fmt.Errorf("%w: asset %q is not uppercase", ErrMalformedOutput, asset)
		}
	}
	return pv, nil
}
