package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"swap-warden/internal/app"
	"swap-warden/internal/ledger"
)

var (
	exportFrom    string
	exportTo      string
	exportPNGPath string
	exportCSVPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ledger history as CSV and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			PNGPath: exportPNGPath,
			CSVPath: exportCSVPath,
		}

		now := time.Now().UTC()
		opts.To = now.Truncate(24 * time.Hour)
		opts.From = opts.To.AddDate(0, 0, -6)

		if exportFrom != "" {
			from, err := time.Parse(ledger.DateFormat, exportFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.From = from
		}

		if exportTo != "" {
			to, err := time.Parse(ledger.DateFormat, exportTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.To = to
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Start date (YYYY-MM-DD, inclusive, defaults to six days ago)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "End date (YYYY-MM-DD, inclusive, defaults to today)")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
}
