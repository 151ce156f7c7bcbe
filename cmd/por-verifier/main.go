package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zktls-por/client"
	"zktls-por/proofverifier"
	"zktls-por/providers"
	"zktls-por/shared"
)

// options holds the flags shared by every subcommand. Empty values fall back
// to the matching POR_* environment variable once .env has been loaded.
type options struct {
	envFile         string
	attestationFile string
	configFile      string
	outFile         string
	csvFile         string
	policyFile      string
	dev             bool
	quiet           bool

	logger *shared.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "por-verifier",
		Short:        "Validate exchange attestations and commit proof-of-reserves public values",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd.Name())
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.envFile, "env", ".env", "dotenv file to load before reading POR_* variables")
	pf.StringVar(&opts.attestationFile, "attestation", "", "attestation input file (POR_ATTESTATION_FILE)")
	pf.StringVar(&opts.configFile, "config", "", "attestation config file (POR_CONFIG_FILE)")
	pf.StringVar(&opts.outFile, "out", "", "commitment output file, - for stdout (POR_OUTPUT_FILE)")
	pf.StringVar(&opts.csvFile, "csv", "", "optional balance table CSV output (POR_CSV_FILE)")
	pf.StringVar(&opts.policyFile, "policy", "", "optional YAML pooling policy (POR_POLICY_FILE)")
	pf.BoolVar(&opts.dev, "dev", false, "development logging (DEVELOPMENT)")
	pf.BoolVar(&opts.quiet, "quiet", false, "log errors only (POR_QUIET)")

	root.AddCommand(
		newVerifyCmd(opts),
		newRequestsCmd(opts),
		newFixtureCmd(opts),
		newCheckCmd(opts),
	)
	return root
}

// load resolves env-backed defaults and installs the process logger.
func (o *options) load(command string) error {
	if err := shared.LoadEnv(o.envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", o.envFile, err)
	}

	fromEnv := func(v *string, key, def string) {
		if *v == "" {
			*v = shared.GetEnvOrDefault(key, def)
		}
	}
	fromEnv(&o.attestationFile, "POR_ATTESTATION_FILE", "attestation.json")
	fromEnv(&o.configFile, "POR_CONFIG_FILE", "config.json")
	fromEnv(&o.outFile, "POR_OUTPUT_FILE", "-")
	fromEnv(&o.csvFile, "POR_CSV_FILE", "")
	fromEnv(&o.policyFile, "POR_POLICY_FILE", "")

	logger, err := shared.NewLogger(shared.LoggerConfig{
		ServiceName: "por-" + command,
		Quiet:       o.quiet || shared.GetEnvBoolOrDefault("POR_QUIET", false),
		Development: o.dev || shared.GetEnvBoolOrDefault("DEVELOPMENT", false),
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	o.logger = logger
	providers.SetLogger(logger.Logger)
	client.SetSharedLogger(logger.Logger)

	logger.DebugIf("Configuration loaded",
		zap.String("attestation", o.attestationFile),
		zap.String("config", o.configFile),
		zap.String("out", o.outFile),
		zap.String("policy", o.policyFile))
	return nil
}

func (o *options) policy() (proofverifier.Policy, error) {
	if o.policyFile == "" {
		return proofverifier.DefaultPolicy(), nil
	}
	return proofverifier.LoadPolicy(o.policyFile)
}
