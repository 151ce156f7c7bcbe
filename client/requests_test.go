package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"zktls-por/attestation"
	"zktls-por/proofverifier"
	"zktls-por/shared"
)

func TestMakeUnifiedRequestParams(t *testing.T) {
	orig := UnifiedOrigRequests([]Account{{"k", "s"}}, docTime, 60000)
	params, err := MakeUnifiedRequestParams(orig)
	require.NoError(t, err)

	want := &RequestParams{
		Requests: []RequestParam{
			{URL: orig[0].URL, Method: "GET", Header: map[string]string{"X-MBX-APIKEY": "k"}, Body: ""},
			{URL: orig[1].URL, Method: "GET", Header: map[string]string{"X-MBX-APIKEY": "k"}, Body: ""},
		},
		ResponseResolves: [][]ResponseResolve{
			{{KeyName: "0", ParseType: "json", ParsePath: "$", Op: "SHA256_EX"}},
			{{KeyName: "1", ParseType: "json", ParsePath: "$", Op: "SHA256_EX"}},
		},
	}
	if diff := cmp.Diff(want, params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}

	// Headers are copied, not shared.
	orig[0].Headers["X-MBX-APIKEY"] = "changed"
	require.Equal(t, "k", params.Requests[0].Header["X-MBX-APIKEY"])

	b, err := json.Marshal(params.Requests[0])
	require.NoError(t, err)
	require.Contains(t, string(b), `"body":""`)
}

func TestMakeUnifiedRequestParamsRejects(t *testing.T) {
	pair := UnifiedOrigRequests([]Account{{"k", "s"}}, docTime, 60000)

	_, err := MakeUnifiedRequestParams(nil)
	require.ErrorIs(t, err, ErrRequestCount)

	_, err = MakeUnifiedRequestParams(pair[:1])
	require.ErrorIs(t, err, ErrRequestCount)

	_, err = MakeUnifiedRequestParams([]OrigRequest{pair[1], pair[0]})
	require.ErrorIs(t, err, ErrUnexpectedRequest)

	spot := SpotOrigRequests([]Account{{"k", "s"}}, docTime, 60000)
	_, err = MakeUnifiedRequestParams([]OrigRequest{pair[0], spot[0]})
	require.ErrorIs(t, err, ErrUnexpectedRequest)
}

func TestMakeSpotRequestParams(t *testing.T) {
	_, err := MakeSpotRequestParams(nil)
	require.ErrorIs(t, err, ErrRequestCount)

	orig := SpotOrigRequests([]Account{{"a", "x"}, {"b", "y"}, {"c", "z"}}, docTime, 60000)
	params, err := MakeSpotRequestParams(orig)
	require.NoError(t, err)
	require.Len(t, params.Requests, 3)
	require.Equal(t, "2", params.ResponseResolves[2][0].KeyName)

	records := params.Records()
	require.Equal(t, orig[1].URL, records[1].URL)
	require.Equal(t, "GET", records[1].Method)
}

func TestBuildProverInput(t *testing.T) {
	out, err := BuildProverInput(`{"public_data": []}`, `{"a":1}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"unified":{"public_data":[]},"spot":{"a":1}}`, out)

	_, err = BuildProverInput(`{`, `{}`)
	require.Error(t, err)
	_, err = BuildProverInput(`{}`, ``)
	require.Error(t, err)
}

func TestFixtureValidates(t *testing.T) {
	SetSharedLogger(zaptest.NewLogger(t))
	t.Cleanup(func() { SetSharedLogger(nil) })
	t.Setenv("BINANCE_RECV_WINDOW", "")

	kp, err := shared.GenerateSigningKeyPair()
	require.NoError(t, err)

	accounts := []Account{{"k1", "s1"}, {"k2", "s2"}}
	now := time.UnixMilli(1760921486287)
	fx, err := BuildFixture(kp, accounts, now)
	require.NoError(t, err)
	require.Equal(t, kp.GetEthAddress().Hex(), fx.Attestor)

	app := proofverifier.NewApp(attestation.NewVerifier(zaptest.NewLogger(t)), proofverifier.DefaultPolicy(),
		&shared.Logger{Logger: zaptest.NewLogger(t)})
	pv := app.Run(proofverifier.Inputs{AttestationData: fx.AttestationData, ConfigData: fx.ConfigData})
	require.Equal(t, uint32(proofverifier.Success), pv.Status)
	require.Len(t, pv.AttestationMeta, 2)
	require.Equal(t, uint64(now.UnixMilli()), pv.AttestationMeta[0].Timestamp)

	// per account: USDT 987.5 pooled with USDC 250, BTC 0.1, ETH 2
	require.Equal(t, map[string]float64{"BTC": 0.2, "ETH": 4, "STABLECOIN": 2475}, pv.AssetBalance)
}
