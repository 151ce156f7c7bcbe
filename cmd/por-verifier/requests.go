package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zktls-por/client"
)

func newRequestsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "requests",
		Short: "Print the signed unified and spot request parameters for the configured accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accounts, err := client.LoadAccounts()
			if err != nil {
				return err
			}
			now := time.Now()
			recvWindow := client.RecvWindow()

			unified, err := client.MakeUnifiedRequestParams(client.UnifiedOrigRequests(accounts, now, recvWindow))
			if err != nil {
				return err
			}
			spot, err := client.MakeSpotRequestParams(client.SpotOrigRequests(accounts, now, recvWindow))
			if err != nil {
				return err
			}

			opts.logger.InfoIf("Request parameters built",
				zap.Int("accounts", len(accounts)),
				zap.Int64("recv_window_ms", recvWindow))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]*client.RequestParams{
				"unified": unified,
				"spot":    spot,
			})
		},
	}
}
