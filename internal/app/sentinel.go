package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"swap-warden/internal/scheduler"
	"swap-warden/internal/sentinel"
)

// RunSentinel executes one check cycle, or loops until interrupted when
// daemon is true.
func (a *App) RunSentinel(ctx context.Context, daemon bool) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := a.Config.Sentinel
	agent, ok := a.Config.Agent(cfg.Agent)
	if !ok {
		return fmt.Errorf("sentinel.agent %q is not a configured agent", cfg.Agent)
	}

	client, err := a.newTradingClient()
	if err != nil {
		return err
	}
	defer client.Close()

	opts := sentinel.Options{
		Agent:              cfg.Agent,
		Account:            agent.Account,
		Asset:              cfg.Asset,
		StableAsset:        a.Config.Trading.StableAsset,
		ThresholdUSD:       decimal.NewFromFloat(cfg.ThresholdUSD),
		SuggestedAmountUSD: decimal.NewFromFloat(agent.MaxSingleTradeUSD),
	}

	var sched *scheduler.Scheduler
	if daemon {
		sched = scheduler.New(scheduler.Options{
			Interval:     cfg.CheckInterval,
			StartupDelay: cfg.StartupDelay,
		}, a.Logger)
	}

	s := sentinel.New(opts, sched, a.newValuer(client), a.newNotifiers(), a.Logger)

	if !daemon {
		return s.CheckOnce(ctx)
	}

	err = s.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("sentinel terminated with error")
		return err
	}

	a.Logger.Info().Msg("sentinel stopped")
	return nil
}
