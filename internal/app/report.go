package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"swap-warden/internal/ledger"
)

// Report prints the daily trading report and returns the aggregated stats.
func (a *App) Report(_ context.Context, opts ReportOptions) (ledger.DailyStats, error) {
	date := opts.Date
	if date == "" {
		date = ledger.Today()
	}

	agents := a.agentNames()
	if opts.Agent != "" {
		if _, ok := a.Config.Agent(opts.Agent); !ok {
			return ledger.DailyStats{}, fmt.Errorf("unknown agent %q", opts.Agent)
		}
		agents = []string{opts.Agent}
	}

	stats, err := ledger.CollectStats(a.Config.Ledger.BaseDir, agents, date, a.Logger)
	if err != nil {
		return ledger.DailyStats{}, err
	}

	printReport(stats, agents)
	return stats, nil
}

func printReport(stats ledger.DailyStats, agents []string) {
	fmt.Fprintf(os.Stdout, "Daily trading report - %s\n\n", stats.Date)

	if stats.TotalTx == 0 {
		fmt.Fprintln(os.Stdout, "no transactions")
		return
	}

	fmt.Fprintf(os.Stdout, "total: %d  success: %d  failed: %d  pending: %d", stats.TotalTx, stats.SuccessTx, stats.FailedTx, stats.PendingTx)
	if stats.UnknownTx > 0 {
		fmt.Fprintf(os.Stdout, "  unknown: %d", stats.UnknownTx)
	}
	fmt.Fprintf(os.Stdout, "\nvolume: $%s USD\n\n", stats.TotalVolumeUSD.StringFixed(2))

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Agent\tCount\tSuccess\tFailed\tPending\tVolume (USD)")
	for _, agent := range agents {
		agentStats := stats.Agents[agent]
		if agentStats.Count == 0 {
			continue
		}
		fmt.Fprintf(writer, "%s\t%d\t%d\t%d\t%d\t$%s\n",
			agent,
			agentStats.Count,
			agentStats.Success,
			agentStats.Failed,
			agentStats.Pending,
			agentStats.VolumeUSD.StringFixed(2),
		)
	}
	writer.Flush()
}
