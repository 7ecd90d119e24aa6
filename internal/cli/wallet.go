package cli

import (
	"github.com/spf13/cobra"
)

var balanceAgent string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show on-chain balances for one agent's account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Balance(cmd.Context(), balanceAgent)
	},
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Show the wallet behind the trading API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Wallet(cmd.Context())
	},
}

func init() {
	balanceCmd.Flags().StringVar(&balanceAgent, "agent", "", "Agent whose account to query")
	_ = balanceCmd.MarkFlagRequired("agent")
}
