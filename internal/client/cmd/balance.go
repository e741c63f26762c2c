package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

type balancePayload struct {
	Status      string  `json:"status"`
	Balance     float64 `json:"balance"`
	Currency    string  `json:"currency"`
	LastUpdated string  `json:"last_updated"`
	Error       string  `json:"error"`
}

func newBalanceCmd(serverURL *string) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the current balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/get-balance"
			if refresh {
				path = "/refresh-balance"
			}
			resp, err := http.Get(*serverURL + path)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			var body balancePayload
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return err
			}
			if body.Status != "success" {
				return fmt.Errorf("broker error: %s", body.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f %s (as of %s)\n", body.Balance, body.Currency, body.LastUpdated)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Force a provider fetch, bypassing the cache")
	return cmd
}
