package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"swap-warden/internal/ledger"
)

// Show prints one agent's ledger records for a date, newest last.
func (a *App) Show(_ context.Context, opts ShowOptions) error {
	if _, ok := a.Config.Agent(opts.Agent); !ok {
		return fmt.Errorf("unknown agent %q", opts.Agent)
	}

	date := opts.Date
	if date == "" {
		date = ledger.Today()
	}

	records, err := ledger.Open(a.Config.Ledger.BaseDir, opts.Agent, a.Logger).Read(date)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stdout, "no records found")
		return nil
	}

	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[len(records)-opts.Limit:]
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tType\tPair\tAmount\tUSD\tStatus\tTx\tError")

	for _, record := range records {
		errMsg := ""
		if record.Error != nil {
			errMsg = sanitizeInline(*record.Error)
		}
		txHash := ""
		if record.TxHash != nil {
			txHash = *record.TxHash
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t$%s\t%s\t%s\t%s\n",
			record.Timestamp.UTC().Format(time.RFC3339),
			record.Type,
			record.FromAsset+"-"+record.ToAsset,
			record.FromAmount.String(),
			record.USDValue.StringFixed(2),
			record.Status,
			txHash,
			errMsg,
		)
	}

	writer.Flush()
	return nil
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
