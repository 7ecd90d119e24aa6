package app

import (
	"context"
	"fmt"
	"os"

	"swap-warden/internal/executor"
	"swap-warden/internal/ledger"
)

// Swap runs one proposal through the risk-gated executor and prints the
// outcome. The returned Outcome lets the CLI map status to an exit code.
func (a *App) Swap(ctx context.Context, opts SwapOptions) (executor.Outcome, error) {
	client, err := a.newTradingClient()
	if err != nil {
		return executor.Outcome{}, err
	}
	defer client.Close()

	exec := executor.New(a.Config, client, a.newValuer(client), a.openLedgers(), a.Logger)

	outcome := exec.ProposeSwap(ctx, executor.Proposal{
		FromAsset:            opts.FromAsset,
		ToAsset:              opts.ToAsset,
		Amount:               opts.Amount,
		Agent:                opts.Agent,
		RequestedSlippageBPS: opts.SlippageBPS,
	})

	printOutcome(outcome)
	return outcome, nil
}

func printOutcome(outcome executor.Outcome) {
	fmt.Fprintf(os.Stdout, "status: %s\n", outcome.Status)
	fmt.Fprintf(os.Stdout, "usd_value: $%s\n", outcome.USDValue.StringFixed(2))
	if outcome.TxHash != "" {
		fmt.Fprintf(os.Stdout, "tx_hash: %s\n", outcome.TxHash)
	}
	if outcome.Quote != nil {
		fmt.Fprintf(os.Stdout, "expected: %s %s\n", outcome.Quote.ExpectedHuman(), outcome.Quote.ToAsset)
	}
	if outcome.Message != "" {
		fmt.Fprintf(os.Stdout, "message: %s\n", outcome.Message)
	}
	if outcome.Status == ledger.StatusRequiresApproval {
		fmt.Fprintln(os.Stdout, "no funds moved; confirm through the approval console to proceed")
	}
}
