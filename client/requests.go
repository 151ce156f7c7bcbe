package client

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"zktls-por/attestation"
	"zktls-por/shared"
)

// RequestParam is one request the prover replays inside the TLS session.
type RequestParam struct {
	URL    string            `json:"url"`
	Method string            `json:"method"`
	Header map[string]string `json:"header"`
	Body   string            `json:"body"`
}

// Record converts the parameter into the form it takes in an attestation.
func (r RequestParam) Record() attestation.RequestRecord {
	return attestation.RequestRecord{
		URL:    r.URL,
		Method: r.Method,
		Header: maps.Clone(r.Header),
		Body:   r.Body,
	}
}

// ResponseResolve tells the prover how to commit to one response.
type ResponseResolve struct {
	KeyName   string `json:"keyName"`
	ParseType string `json:"parseType"`
	ParsePath string `json:"parsePath"`
	Op        string `json:"op"`
}

// RequestParams is the full parameter set for one attestation session.
type RequestParams struct {
	Requests         []RequestParam      `json:"requests"`
	ResponseResolves [][]ResponseResolve `json:"responseResolves"`
}

// Records returns the requests in attestation form.
func (p *RequestParams) Records() []attestation.RequestRecord {
	out := make([]attestation.RequestRecord, len(p.Requests))
	for i, r := range p.Requests {
		out[i] = r.Record()
	}
	return out
}

func (p *RequestParams) add(orig OrigRequest) {
	i := len(p.Requests)
	p.Requests = append(p.Requests, RequestParam{
		URL:    orig.URL,
		Method: "GET",
		Header: maps.Clone(orig.Headers),
		Body:   "",
	})
	p.ResponseResolves = append(p.ResponseResolves, []ResponseResolve{{
		KeyName:   strconv.Itoa(i),
		ParseType: "json",
		ParsePath: "$",
		Op:        "SHA256_EX",
	}})
}

// MakeUnifiedRequestParams checks that orig is a non-empty run of
// position-risk/balance pairs and converts it.
func MakeUnifiedRequestParams(orig []OrigRequest) (*RequestParams, error) {
	if len(orig) < 2 || len(orig)%2 != 0 {
		return nil, fmt.Errorf("%w: %d unified requests, need a non-empty even count", ErrRequestCount, len(orig))
	}

	params := &RequestParams{}
	for i, r := range orig {
		expected := shared.RiskURL
		if i%2 != 0 {
			expected = shared.BalanceURL
		}
		if !strings.HasPrefix(r.URL, expected) {
			return nil, fmt.Errorf("%w: index %d must target %s", ErrUnexpectedRequest, i, expected)
		}
		params.add(r)
	}
	return params, nil
}

// MakeSpotRequestParams converts at least one spot request.
func MakeSpotRequestParams(orig []OrigRequest) (*RequestParams, error) {
	if len(orig) < 1 {
		return nil, fmt.Errorf("%w: need at least one spot request", ErrRequestCount)
	}
	params := &RequestParams{}
	for _, r := range orig {
		params.add(r)
	}
	return params, nil
}

// proverInput is the document handed to the verification program.
type proverInput struct {
	Unified json.RawMessage `json:"unified"`
	Spot    json.RawMessage `json:"spot"`
}

// BuildProverInput combines the two attestation payloads into one input document.
func BuildProverInput(unified, spot string) (string, error) {
	if !json.Valid([]byte(unified)) {
		return "", fmt.Errorf("unified attestation is not valid JSON")
	}
	if !json.Valid([]byte(spot)) {
		return "", fmt.Errorf("spot attestation is not valid JSON")
	}
	b, err := json.Marshal(proverInput{Unified: json.RawMessage(unified), Spot: json.RawMessage(spot)})
	if err != nil {
		return "", fmt.Errorf("failed to encode prover input: %w", err)
	}
	return string(b), nil
}
