package proofverifier

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"zktls-por/attestation"
	"zktls-por/shared"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const anyConfig = `{"url":["https://example.com"]}`

func testApp(t *testing.T, v Verifier) *App {
	return NewApp(v, DefaultPolicy(), &shared.Logger{Logger: zaptest.NewLogger(t)})
}

func bothInputs(unified, spot string) string {
	return `{"unified":` + unified + `,"spot":` + spot + `}`
}

func TestRunStopsOnSpotDuplicate(t *testing.T) {
	v := &stubVerifier{routes: map[string]stubTranscript{
		shared.RiskURL: {
			requests: []attestation.RequestRecord{req(shared.RiskURL, 10), req(shared.BalanceURL, 10)},
			bodies:   []string{riskBody("BTC", "1"), btcBalanceBody},
		},
		shared.SpotBalanceURL: {
			requests: []attestation.RequestRecord{req(shared.SpotBalanceURL, 11), req(shared.SpotBalanceURL, 12)},
			bodies:   []string{`{"uid":7,"balances":[]}`, `{"uid":7,"balances":[]}`},
		},
	}}

	pv := testApp(t, v).Run(Inputs{AttestationData: bothInputs(metaPayload, metaPayload), ConfigData: anyConfig})
	require.Equal(t, uint32(DuplicateAccount), pv.Status)
	require.Len(t, pv.AttestationMeta, 1, "unified record is kept, output is void anyway")
	require.Empty(t, pv.AssetBalance)
}

func TestRunMissingParts(t *testing.T) {
	tests := []struct {
		name string
		data string
		code ZkErrorCode
	}{
		{"unified only", `{"unified":` + metaPayload + `}`, GetSpotDataFail},
		{"spot only", `{"spot":` + metaPayload + `}`, GetUnifiedDataFail},
		{"empty object", `{}`, GetUnifiedDataFail},
		{"array document", `[1,2]`, GetUnifiedDataFail},
		{"not json", `unified=1`, ParseAttestationData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &stubVerifier{}
			pv := testApp(t, v).Run(Inputs{AttestationData: tt.data, ConfigData: anyConfig})
			require.Equal(t, uint32(tt.code), pv.Status)
			require.Empty(t, v.calls)
			require.Empty(t, pv.AttestationMeta)
		})
	}
}

func TestRunBadConfig(t *testing.T) {
	for _, cfg := range []string{``, `{"url":`, `{"url":"https://example.com"}`, `{"attestor_addr":["nope"]}`} {
		pv := testApp(t, &stubVerifier{}).Run(Inputs{AttestationData: bothInputs(metaPayload, metaPayload), ConfigData: cfg})
		require.Equal(t, uint32(ParseConfigData), pv.Status, "config %q", cfg)
	}
}

// signedInputs builds real attestor-signed transcripts for both subsystems.
func signedInputs(t *testing.T, kp *shared.SigningKeyPair) string {
	t.Helper()
	unified, err := attestation.BuildPayload(kp, "task-u", "0x01",
		[]attestation.RequestRecord{req(shared.RiskURL, 1001), req(shared.BalanceURL, 1000)},
		[]string{
			riskBody("BTCUSDT", "65000.1"),
			`[{"asset":"USDT","totalWalletBalance":"100.5","umUnrealizedPNL":"-0.5"},{"asset":"btc","totalWalletBalance":"0.25","umUnrealizedPNL":"0"}]`,
		}, 1002)
	require.NoError(t, err)

	spot, err := attestation.BuildPayload(kp, "task-s", "0x02",
		[]attestation.RequestRecord{req(shared.SpotBalanceURL, 2001), req(shared.SpotBalanceURL, 2000)},
		[]string{
			`{"uid":1,"balances":[{"asset":"USDC","free":"50","locked":"0"},{"asset":"BTC","free":"0.5","locked":"0.25"}]}`,
			`{"uid":2,"balances":[{"asset":"fdusd","free":"25","locked":"0"},{"asset":"ETH","free":"2","locked":"0"}]}`,
		}, 2002)
	require.NoError(t, err)
	return bothInputs(unified, spot)
}

func TestRunSignedTranscripts(t *testing.T) {
	kp, err := shared.GenerateSigningKeyPair()
	require.NoError(t, err)
	attestor := kp.GetEthAddress().Hex()

	app := NewApp(attestation.NewVerifier(zaptest.NewLogger(t)), DefaultPolicy(), &shared.Logger{Logger: zaptest.NewLogger(t)})
	pv := app.Run(Inputs{
		AttestationData: signedInputs(t, kp),
		ConfigData:      `{"url":["https://example.com"],"attestor_addr":["` + attestor + `"]}`,
	})
	require.Equal(t, uint32(Success), pv.Status)

	want := &PublicValues{
		Status: 0,
		AttestationMeta: []AttestationMeta{
			{TaskID: "task-u", ReportTxHash: "0x01", Attestor: attestor, BaseURLs: []string{shared.RiskURL, shared.BalanceURL}, Timestamp: 1000},
			{TaskID: "task-s", ReportTxHash: "0x02", Attestor: attestor, BaseURLs: []string{shared.SpotBalanceURL}, Timestamp: 2000},
		},
		AssetBalance: map[string]float64{"BTC": 1, "ETH": 2, "STABLECOIN": 175},
	}
	if diff := cmp.Diff(want, pv); diff != "" {
		t.Fatalf("public values mismatch (-want +got):\n%s", diff)
	}
}

func TestRunUntrustedAttestor(t *testing.T) {
	kp, err := shared.GenerateSigningKeyPair()
	require.NoError(t, err)
	other, err := shared.GenerateSigningKeyPair()
	require.NoError(t, err)

	app := NewApp(attestation.NewVerifier(nil), DefaultPolicy(), nil)
	pv := app.Run(Inputs{
		AttestationData: signedInputs(t, kp),
		ConfigData:      `{"url":[],"attestor_addr":["` + other.GetEthAddress().Hex() + `"]}`,
	})
	require.Equal(t, uint32(VerifyAttestation), pv.Status)
	require.Empty(t, pv.AttestationMeta)
}

func TestRunNoStablecoins(t *testing.T) {
	v := &stubVerifier{routes: map[string]stubTranscript{
		shared.RiskURL: {},
		shared.SpotBalanceURL: {
			requests: []attestation.RequestRecord{req(shared.SpotBalanceURL, 5)},
			bodies:   []string{`{"uid":3,"balances":[{"asset":"BNB","free":"3","locked":"1"}]}`},
		},
	}}
	pv := testApp(t, v).Run(Inputs{AttestationData: bothInputs(metaPayload, metaPayload), ConfigData: anyConfig})
	require.Equal(t, uint32(Success), pv.Status)
	require.Equal(t, map[string]float64{"BNB": 4, "STABLECOIN": 0}, pv.AssetBalance)
}

func TestRunPooledBalanceOverflow(t *testing.T) {
	v := &stubVerifier{routes: map[string]stubTranscript{
		shared.RiskURL: {},
		shared.SpotBalanceURL: {
			requests: []attestation.RequestRecord{req(shared.SpotBalanceURL, 5)},
			bodies:   []string{`{"uid":3,"balances":[{"asset":"USDT","free":"1.7e308","locked":"0"},{"asset":"USDC","free":"1.7e308","locked":"0"}]}`},
		},
	}}
	pv := testApp(t, v).Run(Inputs{AttestationData: bothInputs(metaPayload, metaPayload), ConfigData: anyConfig})
	require.Equal(t, uint32(GetJsonValueFail), pv.Status)
	require.Empty(t, pv.AssetBalance)
}

func TestRunAcceptsAnyURLStrings(t *testing.T) {
	v := &stubVerifier{routes: map[string]stubTranscript{shared.RiskURL: {}, shared.SpotBalanceURL: {}}}
	for _, cfg := range []string{`{"url":["papi.binance.com/papi/v1/balance"]}`, `{"url":["*"]}`} {
		pv := testApp(t, v).Run(Inputs{AttestationData: bothInputs(metaPayload, metaPayload), ConfigData: cfg})
		require.Equal(t, uint32(Success), pv.Status, "config %q", cfg)
	}
}
