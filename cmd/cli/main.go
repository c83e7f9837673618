package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	api := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "walletledger-cli",
		Short:         "Wallet ledger CLI tool",
		Long:          `A command line interface for interacting with the wallet ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&api.baseURL, "url", "http://localhost:8080", "Base URL of the wallet ledger API")
	rootCmd.PersistentFlags().DurationVar(&api.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&api.actor, "actor", "", "Actor ID sent as X-Actor-ID")

	rootCmd.AddCommand(
		balanceCmd(api),
		walletCmd(api, "deposit", "Credit an account"),
		walletCmd(api, "withdraw", "Debit an account"),
		transferCmd(api),
		historyCmd(api),
		ledgerCmd(api),
		migrateCmd(),
	)

	return rootCmd
}
