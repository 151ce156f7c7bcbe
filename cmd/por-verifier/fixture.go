package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"zktls-por/client"
	"zktls-por/shared"
)

func newFixtureCmd(opts *options) *cobra.Command {
	var (
		accounts int
		keyHex   string
	)

	cmd := &cobra.Command{
		Use:   "fixture",
		Short: "Write a locally signed sample attestation input and matching config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if accounts < 1 {
				return fmt.Errorf("--accounts must be at least 1")
			}
			if keyHex == "" {
				keyHex = shared.GetEnvOrDefault("POR_ATTESTOR_KEY", "")
			}

			var (
				kp  *shared.SigningKeyPair
				err error
			)
			if keyHex != "" {
				kp, err = shared.SigningKeyPairFromHex(keyHex)
			} else {
				kp, err = shared.GenerateSigningKeyPair()
			}
			if err != nil {
				return err
			}

			accs := make([]client.Account, accounts)
			for i := range accs {
				accs[i] = client.Account{
					Key:    "fixture-key-" + strconv.Itoa(i),
					Secret: "fixture-secret-" + strconv.Itoa(i),
				}
			}

			fx, err := client.BuildFixture(kp, accs, time.Now())
			if err != nil {
				return err
			}
			if err := os.WriteFile(opts.attestationFile, []byte(fx.AttestationData), 0o644); err != nil {
				return fmt.Errorf("failed to write attestation input: %w", err)
			}
			if err := os.WriteFile(opts.configFile, []byte(fx.ConfigData), 0o644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "attestor %s\nattestation %s\nconfig %s\n",
				fx.Attestor, opts.attestationFile, opts.configFile)
			return nil
		},
	}

	cmd.Flags().IntVar(&accounts, "accounts", 2, "number of sample accounts")
	cmd.Flags().StringVar(&keyHex, "key", "", "hex attestor private key, random when empty (POR_ATTESTOR_KEY)")
	return cmd
}
