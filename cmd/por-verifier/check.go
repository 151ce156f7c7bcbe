package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"zktls-por/proofverifier"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <commitment.json>",
		Short: "Check a committed output before relying on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := opts.policy()
			if err != nil {
				return err
			}
			pv, err := proofverifier.Validate(args[0], policy)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d assets, %d attestations\n",
				len(pv.AssetBalance), len(pv.AttestationMeta))
			return nil
		},
	}
}
