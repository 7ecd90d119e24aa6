// Package sentinel polls the price of one asset and hands an alert to the
// external approver when it drops below a configured threshold. The sentinel
// observes and alerts only; it never executes trades itself.
package sentinel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"swap-warden/internal/alerting"
	"swap-warden/internal/scheduler"
)

// Options parameterise the sentinel.
type Options struct {
	Agent              string
	Account            string
	Asset              string
	StableAsset        string
	ThresholdUSD       decimal.Decimal
	SuggestedAmountUSD decimal.Decimal
}

// Pricer supplies the current unit price of an asset in USD.
type Pricer interface {
	UnitPrice(ctx context.Context, asset string) (decimal.Decimal, error)
}

// Sentinel runs the check cycle, in single-shot or daemon mode.
type Sentinel struct {
	opts      Options
	scheduler *scheduler.Scheduler
	pricer    Pricer
	notifiers []alerting.Notifier
	logger    zerolog.Logger
	now       func() time.Time
}

// New constructs a sentinel. The scheduler may be nil for single-shot use.
// The first notifier is the durable trigger artifact; any further ones are
// secondary channels.
func New(opts Options, sched *scheduler.Scheduler, pricer Pricer, notifiers []alerting.Notifier, logger zerolog.Logger) *Sentinel {
	return &Sentinel{
		opts:      opts,
		scheduler: sched,
		pricer:    pricer,
		notifiers: notifiers,
		logger:    logger.With().Str("component", "sentinel").Str("agent", opts.Agent).Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run begins the daemon loop, one check cycle per interval, until ctx is
// cancelled.
func (s *Sentinel) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}

	s.logger.Info().
		Str("asset", s.opts.Asset).
		Str("threshold_usd", s.opts.ThresholdUSD.StringFixed(2)).
		Msg("starting daemon mode")

	return s.scheduler.Run(ctx, s.CheckOnce)
}

// CheckOnce runs a single check cycle. A failed price read is logged and
// treated as a quiet cycle, never as a loop-fatal error; the returned error
// only reports alert delivery problems.
func (s *Sentinel) CheckOnce(ctx context.Context) error {
	price, err := s.pricer.UnitPrice(ctx, s.opts.Asset)
	if err != nil {
		s.logger.Error().Err(err).Str("asset", s.opts.Asset).Msg("price check failed; treating cycle as quiet")
		return nil
	}

	s.logger.Info().
		Str("asset", s.opts.Asset).
		Str("price_usd", price.StringFixed(2)).
		Str("threshold_usd", s.opts.ThresholdUSD.StringFixed(2)).
		Msg("price checked")

	if !price.LessThan(s.opts.ThresholdUSD) {
		s.logger.Debug().Msg("price at or above threshold; no action")
		return nil
	}

	return s.alert(ctx, price)
}

func (s *Sentinel) alert(ctx context.Context, price decimal.Decimal) error {
	record := alerting.Alert{
		Type:    alerting.AlertTypePrice,
		Message: fmt.Sprintf("%s price dropped below $%s: $%s", strings.ToUpper(s.opts.Asset), s.opts.ThresholdUSD.StringFixed(2), price.StringFixed(2)),
		Agent:   s.opts.Agent,
		Account: s.opts.Account,
		Action:  alerting.ActionEvaluateTrade,
		// Suggested follow-up: sell the monitored asset into the stable
		// asset, sized by the agent's single-trade limit.
		FromAsset:    strings.ToLower(s.opts.Asset),
		ToAsset:      strings.ToLower(s.opts.StableAsset),
		Amount:       s.opts.SuggestedAmountUSD,
		PriceUSD:     price,
		ThresholdUSD: s.opts.ThresholdUSD,
		Timestamp:    s.now(),
	}

	var firstErr error
	for _, notifier := range s.notifiers {
		if err := notifier.Notify(ctx, record); err != nil {
			s.logger.Error().Err(err).Msg("alert delivery failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr == nil {
		s.logger.Info().Str("price_usd", price.StringFixed(2)).Msg("alert triggered")
	}
	return firstErr
}
