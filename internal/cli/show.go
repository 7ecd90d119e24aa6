package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"swap-warden/internal/app"
)

var (
	showAgent string
	showDate  string
	showLimit int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent ledger records for one agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Agent: showAgent,
			Date:  showDate,
			Limit: showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().StringVar(&showAgent, "agent", "", "Agent whose ledger to display")
	showCmd.Flags().StringVar(&showDate, "date", "", "Ledger date (YYYY-MM-DD, defaults to today UTC)")
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of records to display")

	_ = showCmd.MarkFlagRequired("agent")
}
