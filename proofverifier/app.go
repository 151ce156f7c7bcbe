package proofverifier

import (
	"encoding/json"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"zktls-por/attestation"
	"zktls-por/shared"
)

// Inputs are the two raw documents a run reads, in this order.
type Inputs struct {
	AttestationData string // {"unified": <attestation>, "spot": <attestation>}
	ConfigData      string // attestation config JSON
}

// App validates both account subsystems against one shared accumulator and
// reduces the result into public values.
type App struct {
	verifier Verifier
	policy   Policy
	logger   *shared.Logger
}

func NewApp(v Verifier, policy Policy, logger *shared.Logger) *App {
	if logger == nil {
		logger = shared.NewNopLogger()
	}
	return &App{verifier: v, policy: policy, logger: logger}
}

// Run processes in and always returns public values. On failure Status holds
// the failing code and the other fields hold whatever was built so far.
func (a *App) Run(in Inputs) *PublicValues {
	runID := uuid.NewString()
	log := a.logger.WithRun(runID)

	pv := newPublicValues()
	if err := a.run(in, pv, log); err != nil {
		pv.Status = err.ICode()
		log.Error("Error", zap.Uint32("code", err.ICode()), zap.String("msg", err.Message()))
		return pv
	}
	log.Info("OK",
		zap.Int("assets", len(pv.AssetBalance)),
		zap.Int("subsystems", len(pv.AttestationMeta)))
	return pv
}

// RunAndCommit runs and commits the public values exactly once, whatever the outcome.
func (a *App) RunAndCommit(in Inputs, c Committer) (*PublicValues, error) {
	pv := a.Run(in)
	return pv, c.Commit(pv)
}

func (a *App) run(in Inputs, pv *PublicValues, log *zap.Logger) *ZkError {
	cfg, err := attestation.ParseConfig([]byte(in.ConfigData))
	if err != nil {
		return zkerr(ParseConfigData, err.Error())
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(in.AttestationData), &doc); err != nil {
		return zkerr(ParseAttestationData, err.Error())
	}
	var parts map[string]json.RawMessage
	if _, isObject := doc.(map[string]interface{}); isObject {
		if err := json.Unmarshal([]byte(in.AttestationData), &parts); err != nil {
			return zkerr(ParseAttestationData, err.Error())
		}
	}
	unifiedData, ok := parts["unified"]
	if !ok {
		return zkerr(GetUnifiedDataFail)
	}
	spotData, ok := parts["spot"]
	if !ok {
		return zkerr(GetSpotDataFail)
	}

	acc := AssetBalances{}

	unifiedMeta, zerr := UnifiedSubsystem.Validate(a.verifier, string(unifiedData), cfg, acc, log)
	if zerr != nil {
		return zerr
	}
	pv.AttestationMeta = append(pv.AttestationMeta, unifiedMeta)

	spotMeta, zerr := SpotSubsystem.Validate(a.verifier, string(spotData), cfg, acc, log)
	if zerr != nil {
		return zerr
	}
	pv.AttestationMeta = append(pv.AttestationMeta, spotMeta)

	balances := a.policy.Categorize(acc)
	for asset, amount := range balances {
		if math.IsInf(amount, 0) {
			return zkerr(GetJsonValueFail, "balance of "+asset+" overflows float64")
		}
	}
	pv.AssetBalance = balances
	return nil
}
