package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"swap-warden/internal/app"
)

var reportAgent string

var reportCmd = &cobra.Command{
	Use:   "report [date]",
	Short: "Print the daily transaction report (date defaults to today, UTC)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ReportOptions{Agent: reportAgent}
		if len(args) == 1 {
			opts.Date = args[0]
		}

		stats, err := getApp().Report(cmd.Context(), opts)
		if err != nil {
			return err
		}

		if stats.FailedTx > 0 {
			cmd.SilenceUsage = true
			return fmt.Errorf("%d failed transactions on %s", stats.FailedTx, stats.Date)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportAgent, "agent", "", "Restrict the report to one agent")
}
