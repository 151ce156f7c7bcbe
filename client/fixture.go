package client

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"zktls-por/attestation"
	"zktls-por/shared"
)

// Fixture is a self-contained, locally signed input for a smoke run.
type Fixture struct {
	AttestationData string // {"unified":...,"spot":...}
	ConfigData      string
	Attestor        string
}

// BuildFixture signs canned exchange responses for accounts with kp. Every
// account gets distinct positions and a distinct uid so the result validates.
func BuildFixture(kp *shared.SigningKeyPair, accounts []Account, now time.Time) (*Fixture, error) {
	log := GetLogger("por-fixture")
	recvWindow := RecvWindow()

	unifiedParams, err := MakeUnifiedRequestParams(UnifiedOrigRequests(accounts, now, recvWindow))
	if err != nil {
		return nil, err
	}
	spotParams, err := MakeSpotRequestParams(SpotOrigRequests(accounts, now, recvWindow))
	if err != nil {
		return nil, err
	}

	unifiedBodies := make([]string, 0, 2*len(accounts))
	spotBodies := make([]string, 0, len(accounts))
	for i := range accounts {
		unifiedBodies = append(unifiedBodies,
			fmt.Sprintf(`[{"symbol":"BTCUSDT","entryPrice":"%d.5","positionAmt":"0.010"}]`, 60000+i),
			`[{"asset":"USDT","totalWalletBalance":"1000.0","umUnrealizedPNL":"-12.5"},{"asset":"BTC","totalWalletBalance":"0.1","umUnrealizedPNL":"0"}]`)
		spotBodies = append(spotBodies,
			fmt.Sprintf(`{"uid":%d,"balances":[{"asset":"USDC","free":"250.0","locked":"0"},{"asset":"ETH","free":"1.5","locked":"0.5"}]}`, 100000+i))
	}

	ts := uint64(now.UnixMilli())
	unified, err := attestation.BuildPayload(kp, "fixture-unified", "0x0", unifiedParams.Records(), unifiedBodies, ts)
	if err != nil {
		return nil, err
	}
	spot, err := attestation.BuildPayload(kp, "fixture-spot", "0x0", spotParams.Records(), spotBodies, ts)
	if err != nil {
		return nil, err
	}
	input, err := BuildProverInput(unified, spot)
	if err != nil {
		return nil, err
	}

	attestor := kp.GetEthAddress().Hex()
	cfg, err := json.Marshal(attestation.AttestationConfig{
		URL:           append(append([]string{}, shared.UnifiedURLs...), shared.SpotURLs...),
		AttestorAddrs: []string{attestor},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	log.Info("Fixture built",
		zap.Int("accounts", len(accounts)),
		zap.String("attestor", attestor))
	return &Fixture{AttestationData: input, ConfigData: string(cfg), Attestor: attestor}, nil
}
