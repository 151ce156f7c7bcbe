package attestation

import (
	"zktls-por/providers"
)

// RequestRecord is one HTTP request captured in the attested transcript.
type RequestRecord struct {
	URL    string            `json:"url"`
	Method string            `json:"method,omitempty"`
	Header map[string]string `json:"header,omitempty"`
	Body   string            `json:"body,omitempty"`
}

// Attestation is the signed part of a public data entry. Its canonical JSON
// encoding is what the attestor signs.
type Attestation struct {
	Request        []RequestRecord `json:"request"`
	ResponseHashes []string        `json:"responseHashes"` // hex SHA-256 of each response body, in request order
	Timestamp      uint64          `json:"timestamp"`
}

type PublicData struct {
	TaskID       string      `json:"taskId"`
	ReportTxHash string      `json:"reportTxHash"`
	Attestor     string      `json:"attestor"`
	Attestation  Attestation `json:"attestation"`
	Signature    string      `json:"signature"` // 0x-prefixed 65-byte Ethereum signature
}

type PrivateData struct {
	Messages []string `json:"messages"` // decrypted response bodies, positionally paired with requests
}

// AttestationData is the full attestation payload for one account subsystem.
type AttestationData struct {
	PublicData  []PublicData `json:"public_data"`
	PrivateData PrivateData  `json:"private_data"`
}

// Message is one decrypted response body.
type Message struct {
	Body []byte
}

// GetJSONValues extracts the raw values matched by paths, path by path.
func (m Message) GetJSONValues(paths []string) ([]string, error) {
	return providers.GetJSONValues(m.Body, paths)
}
