package proofverifier

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"zktls-por/attestation"
	"zktls-por/shared"
)

func samplePublicValues() *PublicValues {
	return &PublicValues{
		AttestationMeta: []AttestationMeta{
			{TaskID: "u", ReportTxHash: "0x1", Attestor: "0xa", BaseURLs: []string{shared.RiskURL, shared.BalanceURL}, Timestamp: 5},
			{TaskID: "s", ReportTxHash: "0x2", Attestor: "0xa", BaseURLs: []string{shared.SpotBalanceURL}, Timestamp: 6},
		},
		AssetBalance: map[string]float64{"ETH": 2, "BTC": 0.5, "STABLECOIN": 10},
	}
}

func commitToFile(t *testing.T, pv *PublicValues) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewJSONCommitter(&buf).Commit(pv))
	path := filepath.Join(t.TempDir(), "commitment.json")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestCommitmentDigestIsDeterministic(t *testing.T) {
	a, err := NewCommitment(samplePublicValues())
	require.NoError(t, err)
	b, err := NewCommitment(samplePublicValues())
	require.NoError(t, err)
	require.Equal(t, a.Digest, b.Digest)
	require.Len(t, a.Digest, 66)

	changed := samplePublicValues()
	changed.AssetBalance["BTC"] = 0.25
	c, err := NewCommitment(changed)
	require.NoError(t, err)
	require.NotEqual(t, a.Digest, c.Digest)
}

func TestValidateCommitment(t *testing.T) {
	pv, err := Validate(commitToFile(t, samplePublicValues()), DefaultPolicy())
	require.NoError(t, err)
	require.Equal(t, samplePublicValues(), pv)
}

func TestValidateCommitmentRejects(t *testing.T) {
	failed := newPublicValues()
	failed.Status = uint32(DuplicateAccount)
	_, err := Validate(commitToFile(t, failed), DefaultPolicy())
	require.ErrorIs(t, err, ErrFailedStatus)

	oneMeta := samplePublicValues()
	oneMeta.AttestationMeta = oneMeta.AttestationMeta[:1]
	_, err = Validate(commitToFile(t, oneMeta), DefaultPolicy())
	require.ErrorIs(t, err, ErrMalformedOutput)

	noPool := samplePublicValues()
	delete(noPool.AssetBalance, "STABLECOIN")
	_, err = Validate(commitToFile(t, noPool), DefaultPolicy())
	require.ErrorIs(t, err, ErrMalformedOutput)

	lower := samplePublicValues()
	lower.AssetBalance["eth"] = 1
	_, err = Validate(commitToFile(t, lower), DefaultPolicy())
	require.ErrorIs(t, err, ErrMalformedOutput)
}

func TestValidateCommitmentTampered(t *testing.T) {
	path := commitToFile(t, samplePublicValues())
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var c Commitment
	require.NoError(t, json.Unmarshal(data, &c))
	c.PublicValues.AssetBalance["BTC"] = 50
	tampered, err := json.Marshal(c)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, tampered, 0o600))

	_, err = Validate(path, DefaultPolicy())
	require.ErrorIs(t, err, ErrDigestMismatch)

	require.NoError(t, os.WriteFile(path, []byte(`{"digest":"0x00"}`), 0o600))
	_, err = Validate(path, DefaultPolicy())
	require.ErrorIs(t, err, ErrMissingValues)
}

func TestRunAndCommitOnFailure(t *testing.T) {
	var buf bytes.Buffer
	app := NewApp(&stubVerifier{}, DefaultPolicy(), nil)
	pv, err := app.RunAndCommit(Inputs{AttestationData: `{}`, ConfigData: anyConfig}, NewJSONCommitter(&buf))
	require.NoError(t, err)
	require.Equal(t, uint32(GetUnifiedDataFail), pv.Status)

	var c Commitment
	require.NoError(t, json.Unmarshal(buf.Bytes(), &c))
	require.Equal(t, uint32(GetUnifiedDataFail), c.PublicValues.Status)
	require.Empty(t, c.PublicValues.AttestationMeta)
}

func TestRunAndCommitOnOverflow(t *testing.T) {
	var buf bytes.Buffer
	v := &stubVerifier{routes: map[string]stubTranscript{
		shared.RiskURL: {},
		shared.SpotBalanceURL: {
			requests: []attestation.RequestRecord{req(shared.SpotBalanceURL, 5)},
			bodies:   []string{`{"uid":3,"balances":[{"asset":"BNB","free":"1.7e308","locked":"1.7e308"}]}`},
		},
	}}
	app := NewApp(v, DefaultPolicy(), nil)
	pv, err := app.RunAndCommit(Inputs{AttestationData: bothInputs(metaPayload, metaPayload), ConfigData: anyConfig}, NewJSONCommitter(&buf))
	require.NoError(t, err)
	require.Equal(t, uint32(GetJsonValueFail), pv.Status)

	var c Commitment
	require.NoError(t, json.Unmarshal(buf.Bytes(), &c))
	require.Equal(t, uint32(GetJsonValueFail), c.PublicValues.Status)
	require.Empty(t, c.PublicValues.AssetBalance)
}

func TestMarshalBalancesCSV(t *testing.T) {
	out, err := MarshalBalancesCSV(samplePublicValues())
	require.NoError(t, err)
	require.Equal(t, "asset,balance\nBTC,0.5\nETH,2\nSTABLECOIN,10\n", string(out))
}
