package app

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
)

// Balance fetches and prints the on-chain balances for one agent's account.
func (a *App) Balance(ctx context.Context, agent string) error {
	agentCfg, ok := a.Config.Agent(agent)
	if !ok {
		return fmt.Errorf("unknown agent %q", agent)
	}

	client, err := a.newTradingClient()
	if err != nil {
		return err
	}
	defer client.Close()

	balance, err := client.Balance(ctx, agentCfg.Account)
	if err != nil {
		return fmt.Errorf("fetch balance: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "agent:\t%s\n", agent)
	fmt.Fprintf(w, "account:\t%s\n", balance.Address)
	if agentCfg.MaxBalanceUSD > 0 {
		fmt.Fprintf(w, "balance cap:\t$%.2f\n", agentCfg.MaxBalanceUSD)
	}
	fmt.Fprintf(w, "eth:\t%s\n", balance.NativeBalance.String())
	fmt.Fprintf(w, "%s:\t%s\n", a.Config.Trading.StableAsset, balance.StableBalance.String())

	symbols := make([]string, 0, len(balance.OtherTokens))
	for symbol := range balance.OtherTokens {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	for _, symbol := range symbols {
		fmt.Fprintf(w, "%s:\t%s\n", symbol, balance.OtherTokens[symbol].String())
	}

	return w.Flush()
}

// Wallet prints the identity of the wallet behind the trading API.
func (a *App) Wallet(ctx context.Context) error {
	client, err := a.newTradingClient()
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.WalletInfo(ctx)
	if err != nil {
		return fmt.Errorf("fetch wallet info: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "address:\t%s\n", info.Address)
	if info.Identifier != "" {
		fmt.Fprintf(w, "identifier:\t%s\n", info.Identifier)
	}
	fmt.Fprintf(w, "network:\t%s\n", info.Network)
	return w.Flush()
}
