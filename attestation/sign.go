package attestation

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"zktls-por/shared"
)

// NewPublicData builds an unsigned entry committing to the given responses.
func NewPublicData(taskID, reportTxHash string, requests []RequestRecord, responses []string, timestamp uint64) PublicData {
	if requests == nil {
		requests = []RequestRecord{}
	}
	hashes := make([]string, len(responses))
	for i, r := range responses {
		hashes[i] = ResponseHash([]byte(r))
	}
	return PublicData{
		TaskID:       taskID,
		ReportTxHash: reportTxHash,
		Attestation: Attestation{
			Request:        requests,
			ResponseHashes: hashes,
			Timestamp:      timestamp,
		},
	}
}

// Sign sets the attestor address and signature of pd using kp.
func Sign(kp *shared.SigningKeyPair, pd *PublicData) error {
	signed, err := json.Marshal(pd.Attestation)
	if err != nil {
		return fmt.Errorf("failed to encode attestation: %v", err)
	}
	sig, err := kp.SignData(signed)
	if err != nil {
		return err
	}
	pd.Attestor = kp.GetEthAddress().Hex()
	pd.Signature = hexutil.Encode(sig)
	return nil
}

// BuildPayload signs a single-entry attestation over requests and responses
// and returns its JSON encoding.
func BuildPayload(kp *shared.SigningKeyPair, taskID, reportTxHash string, requests []RequestRecord, responses []string, timestamp uint64) (string, error) {
	if responses == nil {
		responses = []string{}
	}
	pd := NewPublicData(taskID, reportTxHash, requests, responses, timestamp)
	if err := Sign(kp, &pd); err != nil {
		return "", err
	}
	data := AttestationData{
		PublicData:  []PublicData{pd},
		PrivateData: PrivateData{Messages: responses},
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode attestation payload: %w", err)
	}
	return string(b), nil
}
