package cmd

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version, buildDate string) *cobra.Command {
	var serverURL string
	root := &cobra.Command{
		Use:   "balancectl",
		Short: "Operator CLI for the balance broker",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Broker base URL")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newBalanceCmd(&serverURL))
	root.AddCommand(newTransactionsCmd(&serverURL))
	root.AddCommand(newOnboardCmd(&serverURL))
	return root
}
