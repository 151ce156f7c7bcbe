package proofverifier

import (
	"fmt"
	"strings"
)

// ZkErrorCode is the status committed in the public values. The numeric
// values are part of the external contract and must never be renumbered.
type ZkErrorCode uint32

const (
	Success ZkErrorCode = 0

	// Input parsing
	ParseAttestationData ZkErrorCode = 1001
	ParseConfigData      ZkErrorCode = 1002

	// Field lookup
	GetTaskIdFail          ZkErrorCode = 2001
	GetReportTxHashFail    ZkErrorCode = 2002
	GetAttestorAddressFail ZkErrorCode = 2003
	GetUnifiedDataFail     ZkErrorCode = 2004
	GetSpotDataFail        ZkErrorCode = 2005

	// Verifier rejection
	VerifyAttestation ZkErrorCode = 3001

	// Transcript structure
	InvalidRequestLength  ZkErrorCode = 4001
	InvalidMessagesLength ZkErrorCode = 4002
	InvalidRequestOrder   ZkErrorCode = 4003
	CannotFoundTimestamp  ZkErrorCode = 4004
	ParseTimestampFailed  ZkErrorCode = 4005
	InvalidRequestUrl     ZkErrorCode = 4006
	InvalidJsonValueSize  ZkErrorCode = 4007
	DuplicateAccount      ZkErrorCode = 4008

	// Field extraction
	GetJsonValueFail ZkErrorCode = 5001
)

var zkErrorNames = map[ZkErrorCode]string{
	Success:                "Success",
	ParseAttestationData:   "ParseAttestationData",
	ParseConfigData:        "ParseConfigData",
	GetTaskIdFail:          "GetTaskIdFail",
	GetReportTxHashFail:    "GetReportTxHashFail",
	GetAttestorAddressFail: "GetAttestorAddressFail",
	GetUnifiedDataFail:     "GetUnifiedDataFail",
	GetSpotDataFail:        "GetSpotDataFail",
	VerifyAttestation:      "VerifyAttestation",
	InvalidRequestLength:   "InvalidRequestLength",
	InvalidMessagesLength:  "InvalidMessagesLength",
	InvalidRequestOrder:    "InvalidRequestOrder",
	CannotFoundTimestamp:   "CannotFoundTimestamp",
	ParseTimestampFailed:   "ParseTimestampFailed",
	InvalidRequestUrl:      "InvalidRequestUrl",
	InvalidJsonValueSize:   "InvalidJsonValueSize",
	DuplicateAccount:       "DuplicateAccount",
	GetJsonValueFail:       "GetJsonValueFail",
}

var zkErrorMessages = map[ZkErrorCode]string{
	Success:                "success",
	ParseAttestationData:   "cannot parse attestation data",
	ParseConfigData:        "cannot parse attestation config",
	GetTaskIdFail:          "cannot find task id in public data",
	GetReportTxHashFail:    "cannot find report tx hash in public data",
	GetAttestorAddressFail: "cannot find attestor address in public data",
	GetUnifiedDataFail:     "cannot find unified account data",
	GetSpotDataFail:        "cannot find spot account data",
	VerifyAttestation:      "attestation verification failed",
	InvalidRequestLength:   "request count must be even",
	InvalidMessagesLength:  "request count does not match message count",
	InvalidRequestOrder:    "position risk request must be at an even index",
	CannotFoundTimestamp:   "cannot find timestamp in request url",
	ParseTimestampFailed:   "cannot parse timestamp in request url",
	InvalidRequestUrl:      "request url is not permitted",
	InvalidJsonValueSize:   "unexpected number of extracted json values",
	DuplicateAccount:       "duplicate account in attestation",
	GetJsonValueFail:       "cannot extract json values from message",
}

func (c ZkErrorCode) String() string {
	if name, ok := zkErrorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ZkErrorCode(%d)", uint32(c))
}

// ZkError is the single failure value every core operation reports.
type ZkError struct {
	Code ZkErrorCode
	Msg  string
}

// zkerr builds an error with the default message for code, followed by any
// contextual detail.
func zkerr(code ZkErrorCode, detail ...string) *ZkError {
	msg := zkErrorMessages[code]
	if len(detail) > 0 {
		msg = msg + ": " + strings.Join(detail, " ")
	}
	return &ZkError{Code: code, Msg: msg}
}

func (e *ZkError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, uint32(e.Code), e.Msg)
}

// ICode returns the integer status committed for this error.
func (e *ZkError) ICode() uint32 {
	return uint32(e.Code)
}

func (e *ZkError) Message() string {
	return e.Msg
}
