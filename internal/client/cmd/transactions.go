package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

type transactionsPayload struct {
	Status       string `json:"status"`
	Enabled      bool   `json:"enabled"`
	Transactions []struct {
		Amount      string `json:"amount"`
		Description string `json:"description"`
		Date        string `json:"date"`
		Direction   string `json:"direction"`
		Currency    string `json:"currency"`
	} `json:"transactions"`
	Error string `json:"error"`
}

func newTransactionsCmd(serverURL *string) *cobra.Command {
	return &cobra.Command{
		Use:   "transactions",
		Short: "List recent transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(*serverURL + "/get-transactions")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			var body transactionsPayload
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return err
			}
			if body.Status != "success" {
				return fmt.Errorf("broker error: %s", body.Error)
			}
			if !body.Enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "transactions feature is disabled")
				return nil
			}
			for _, t := range body.Transactions {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %8s %s  %-6s %s\n", t.Date, t.Amount, t.Currency, t.Direction, t.Description)
			}
			return nil
		},
	}
}
