package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"swap-warden/internal/app"
	"swap-warden/internal/ledger"
)

var (
	swapFrom     string
	swapTo       string
	swapAmount   string
	swapAgent    string
	swapSlippage int
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Propose a swap on behalf of an agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(swapAmount)
		if err != nil {
			return fmt.Errorf("invalid --amount value: %w", err)
		}
		if !amount.IsPositive() {
			return fmt.Errorf("--amount must be greater than zero")
		}

		outcome, err := getApp().Swap(cmd.Context(), app.SwapOptions{
			FromAsset:   swapFrom,
			ToAsset:     swapTo,
			Amount:      amount,
			Agent:       swapAgent,
			SlippageBPS: swapSlippage,
		})
		if err != nil {
			return err
		}

		if outcome.Status == ledger.StatusFailed {
			cmd.SilenceUsage = true
			return fmt.Errorf("swap not executed: %s", outcome.Message)
		}
		return nil
	},
}

func init() {
	swapCmd.Flags().StringVar(&swapFrom, "from", "", "Asset to sell")
	swapCmd.Flags().StringVar(&swapTo, "to", "", "Asset to buy")
	swapCmd.Flags().StringVar(&swapAmount, "amount", "", "Amount to sell, in human units of the source asset")
	swapCmd.Flags().StringVar(&swapAgent, "agent", "", "Agent proposing the swap")
	swapCmd.Flags().IntVar(&swapSlippage, "slippage-bps", 0, "Requested slippage tolerance (the configured policy value always wins)")

	_ = swapCmd.MarkFlagRequired("from")
	_ = swapCmd.MarkFlagRequired("to")
	_ = swapCmd.MarkFlagRequired("amount")
	_ = swapCmd.MarkFlagRequired("agent")
}
