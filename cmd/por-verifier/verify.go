package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zktls-por/attestation"
	"zktls-por/proofverifier"
)

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Validate the unified and spot attestations and commit the public values",
		Long: "Reads the attestation input and config, validates both account subsystems and " +
			"writes the committed public values. A validation failure is reported through the " +
			"committed status code, not the exit code.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, opts)
		},
	}
}

func runVerify(cmd *cobra.Command, opts *options) error {
	attestationData, err := os.ReadFile(opts.attestationFile)
	if err != nil {
		return fmt.Errorf("cannot read attestation input: %w", err)
	}
	configData, err := os.ReadFile(opts.configFile)
	if err != nil {
		return fmt.Errorf("cannot read attestation config: %w", err)
	}
	policy, err := opts.policy()
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, opts.outFile)
	if err != nil {
		return err
	}
	defer closeOut()

	app := proofverifier.NewApp(attestation.NewVerifier(opts.logger.Logger), policy, opts.logger)
	pv, err := app.RunAndCommit(proofverifier.Inputs{
		AttestationData: string(attestationData),
		ConfigData:      string(configData),
	}, proofverifier.NewJSONCommitter(out))
	if err != nil {
		opts.logger.Critical("Commit failed", zap.Error(err))
		return err
	}

	if opts.csvFile != "" {
		table, err := proofverifier.MarshalBalancesCSV(pv)
		if err != nil {
			return fmt.Errorf("failed to render balance table: %w", err)
		}
		if err := os.WriteFile(opts.csvFile, table, 0o644); err != nil {
			return fmt.Errorf("failed to write balance table: %w", err)
		}
	}

	opts.logger.InfoIf("Public values committed",
		zap.Uint32("status", pv.Status),
		zap.String("out", opts.outFile))
	return nil
}

// openOutput returns the commitment destination; "-" is the command's stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
