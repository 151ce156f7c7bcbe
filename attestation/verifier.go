package attestation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"zktls-por/shared"
)

var (
	ErrNoPublicData         = errors.New("attestation has no public data")
	ErrAttestorMismatch     = errors.New("signature does not recover to the declared attestor")
	ErrUntrustedAttestor    = errors.New("attestor is not in the configured attestor set")
	ErrURLNotAllowed        = errors.New("request url is not permitted by the config")
	ErrNoPermittedURLs      = errors.New("config permits no request urls")
	ErrMessageCount         = errors.New("message count does not match committed response hashes")
	ErrResponseHashMismatch = errors.New("message does not match committed response hash")
)

// Verifier authenticates attestation payloads produced by an attestor.
type Verifier struct {
	logger *zap.Logger
}

func NewVerifier(logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{logger: logger.With(zap.String("component", "AttestationVerifier"))}
}

// Verify authenticates payload against cfg and returns the parsed attestation,
// the signature of its first public data entry, and the decrypted messages.
// Request/message pairing is left to the caller.
func (v *Verifier) Verify(payload string, cfg AttestationConfig) (*AttestationData, []byte, []Message, error) {
	_, payloadSch, err := schemas()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := validateAgainst(payloadSch, []byte(payload), "attestation"); err != nil {
		return nil, nil, nil, err
	}

	var data AttestationData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode attestation: %w", err)
	}
	if len(data.PublicData) == 0 {
		return nil, nil, nil, ErrNoPublicData
	}
	if len(cfg.URL) == 0 {
		return nil, nil, nil, ErrNoPermittedURLs
	}

	trusted := make(map[common.Address]struct{}, len(cfg.AttestorAddrs))
	for _, a := range cfg.AttestorAddrs {
		trusted[common.HexToAddress(a)] = struct{}{}
	}

	var firstSig []byte
	for i, pd := range data.PublicData {
		sig, err := verifyPublicData(pd, trusted)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("public_data[%d]: %w", i, err)
		}
		if i == 0 {
			firstSig = sig
		}
		for j, req := range pd.Attestation.Request {
			if !hasAnyPrefix(req.URL, cfg.URL) {
				return nil, nil, nil, fmt.Errorf("public_data[%d] request %d: %w", i, j, ErrURLNotAllowed)
			}
		}
	}

	hashes := data.PublicData[0].Attestation.ResponseHashes
	if len(hashes) != len(data.PrivateData.Messages) {
		return nil, nil, nil, fmt.Errorf("%w: %d hashes, %d messages", ErrMessageCount, len(hashes), len(data.PrivateData.Messages))
	}
	messages := make([]Message, len(data.PrivateData.Messages))
	for i, body := range data.PrivateData.Messages {
		if !strings.EqualFold(ResponseHash([]byte(body)), strings.TrimPrefix(hashes[i], "0x")) {
			return nil, nil, nil, fmt.Errorf("message %d: %w", i, ErrResponseHashMismatch)
		}
		messages[i] = Message{Body: []byte(body)}
	}

	v.logger.Debug("Attestation verified",
		zap.Int("public_data", len(data.PublicData)),
		zap.Int("requests", len(data.PublicData[0].Attestation.Request)),
		zap.Int("messages", len(messages)))

	return &data, firstSig, messages, nil
}

func verifyPublicData(pd PublicData, trusted map[common.Address]struct{}) ([]byte, error) {
	sig, err := hexutil.Decode(pd.Signature)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding: %v", err)
	}
	signed, err := json.Marshal(pd.Attestation)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attestation: %v", err)
	}
	if !common.IsHexAddress(pd.Attestor) {
		return nil, fmt.Errorf("%w: declared attestor %q is not an address", ErrAttestorMismatch, pd.Attestor)
	}
	attestor := common.HexToAddress(pd.Attestor)
	if err := shared.VerifyEthSignature(signed, sig, attestor); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttestorMismatch, err)
	}
	if len(trusted) > 0 {
		if _, ok := trusted[attestor]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUntrustedAttestor, attestor.Hex())
		}
	}
	return sig, nil
}

// ResponseHash is the commitment the attestor records for a response body.
func ResponseHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
