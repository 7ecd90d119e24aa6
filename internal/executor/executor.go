// Package executor implements the risk-gated swap path: locally-known policy
// checks first, then valuation, then the approval gate, and only then the
// external execute call. Every invocation appends exactly one ledger record,
// whatever the outcome.
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"swap-warden/internal/config"
	"swap-warden/internal/ledger"
	"swap-warden/internal/trading"
)

// PolicyViolationError reports a proposal refused by a locally-known limit.
// No network call is made for these.
type PolicyViolationError struct {
	Agent  string
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("policy violation for %s: %s", e.Agent, e.Reason)
}

// Proposal is one requested swap. RequestedSlippageBPS is advisory only:
// a value differing from the policy constant is ignored, never honoured.
type Proposal struct {
	FromAsset            string
	ToAsset              string
	Amount               decimal.Decimal
	Agent                string
	RequestedSlippageBPS int
}

// Outcome is the terminal result of a proposal. Status is one of the ledger
// status values success, requires_approval, or failed; errors from the
// trading API are converted into failed outcomes, never re-raised.
type Outcome struct {
	Status   string
	USDValue decimal.Decimal
	TxHash   string
	Message  string
	Quote    *trading.Quote
}

// Valuer values a token amount in USD.
type Valuer interface {
	USDValue(ctx context.Context, asset string, amount decimal.Decimal) (decimal.Decimal, error)
}

// Swapper is the slice of the trading client the executor needs.
type Swapper interface {
	Quote(ctx context.Context, fromAsset, toAsset string, amount decimal.Decimal) (trading.Quote, error)
	ExecuteSwap(ctx context.Context, fromAsset, toAsset string, amount decimal.Decimal, slippageBPS int) (trading.SwapResult, error)
}

// RecordStore is one agent's slice of the transaction ledger.
type RecordStore interface {
	Append(record ledger.Record) error
	CountToday() (int, error)
}

// Executor runs proposals through the risk gate.
type Executor struct {
	policy    config.PolicyConfig
	agents    map[string]config.AgentConfig
	stable    string
	swapper   Swapper
	valuer    Valuer
	stores    map[string]RecordStore
	logger    zerolog.Logger
	threshold decimal.Decimal
}

// New constructs an executor. stores must contain one RecordStore per
// configured agent.
func New(cfg *config.Config, swapper Swapper, valuer Valuer, stores map[string]RecordStore, logger zerolog.Logger) *Executor {
	return &Executor{
		policy:    cfg.Policy,
		agents:    cfg.Agents,
		stable:    strings.ToLower(cfg.Trading.StableAsset),
		swapper:   swapper,
		valuer:    valuer,
		stores:    stores,
		logger:    logger.With().Str("component", "executor").Logger(),
		threshold: decimal.NewFromFloat(cfg.Policy.ApprovalThresholdUSD),
	}
}

// ProposeSwap decides, executes or defers one proposed swap and records the
// decision. It never returns an error: every failure is a failed Outcome
// with the cause preserved in Message and in the ledger record.
func (e *Executor) ProposeSwap(ctx context.Context, p Proposal) Outcome {
	from := strings.ToLower(p.FromAsset)
	to := strings.ToLower(p.ToAsset)

	if p.RequestedSlippageBPS != 0 && p.RequestedSlippageBPS != e.policy.SlippageBPS {
		e.logger.Warn().
			Int("requested_bps", p.RequestedSlippageBPS).
			Int("policy_bps", e.policy.SlippageBPS).
			Str("agent", p.Agent).
			Msg("requested slippage ignored; policy slippage is fixed")
	}

	agent, ok := e.agents[p.Agent]
	if !ok {
		violation := &PolicyViolationError{Agent: p.Agent, Reason: "unknown agent"}
		e.logger.Error().Str("agent", p.Agent).Msg("proposal from unconfigured agent refused")
		return Outcome{Status: ledger.StatusFailed, USDValue: decimal.Zero, Message: violation.Error()}
	}
	store := e.stores[p.Agent]

	record := ledger.Record{
		Type:        ledger.TypeSwap,
		Agent:       p.Agent,
		Account:     agent.Account,
		FromAsset:   from,
		ToAsset:     to,
		FromAmount:  p.Amount,
		USDValue:    decimal.Zero,
		SlippageBPS: e.policy.SlippageBPS,
	}

	if violation := e.checkLocalPolicy(agent, store, p.Agent, from, to, p.Amount); violation != nil {
		return e.refuse(store, record, violation)
	}

	usdValue, err := e.valuer.USDValue(ctx, from, p.Amount)
	if err != nil {
		record.Status = ledger.StatusFailed
		msg := fmt.Sprintf("failed to calculate USD value: %v", err)
		record.Error = &msg
		e.append(store, record)
		return Outcome{Status: ledger.StatusFailed, USDValue: decimal.Zero, Message: msg}
	}
	record.USDValue = usdValue

	// The single-trade cap for volatile sources is only knowable after
	// valuation, but still precedes quoting and execution.
	if from != e.stable && agent.MaxSingleTradeUSD > 0 {
		limit := decimal.NewFromFloat(agent.MaxSingleTradeUSD)
		if usdValue.GreaterThan(limit) {
			violation := &PolicyViolationError{
				Agent:  p.Agent,
				Reason: fmt.Sprintf("trade value $%s exceeds single-trade cap $%s", usdValue.StringFixed(2), limit.StringFixed(2)),
			}
			return e.refuse(store, record, violation)
		}
	}

	quote, err := e.swapper.Quote(ctx, from, to, p.Amount)
	if err != nil {
		record.Status = ledger.StatusFailed
		msg := fmt.Sprintf("failed to get quote: %v", err)
		record.Error = &msg
		e.append(store, record)
		return Outcome{Status: ledger.StatusFailed, USDValue: usdValue, Message: msg}
	}
	expected := quote.ExpectedHuman()
	record.ExpectedAmount = &expected

	if usdValue.GreaterThan(e.threshold) {
		record.Type = ledger.TypeSwapPendingApproval
		record.Status = ledger.StatusRequiresApproval
		msg := fmt.Sprintf("large trade ($%s USD) requires manual confirmation through the approval console", usdValue.StringFixed(2))
		record.Error = nil
		e.append(store, record)

		e.logger.Info().
			Str("agent", p.Agent).
			Str("pair", from+"-"+to).
			Str("usd_value", usdValue.StringFixed(2)).
			Msg("trade deferred for approval")

		return Outcome{
			Status:   ledger.StatusRequiresApproval,
			USDValue: usdValue,
			Message:  msg,
			Quote:    &quote,
		}
	}

	result, err := e.swapper.ExecuteSwap(ctx, from, to, p.Amount, e.policy.SlippageBPS)
	if err != nil {
		record.Status = ledger.StatusFailed
		msg := fmt.Sprintf("swap failed: %v", err)
		record.Error = &msg
		e.append(store, record)
		return Outcome{Status: ledger.StatusFailed, USDValue: usdValue, Message: msg, Quote: &quote}
	}

	status := result.Status
	if status == "" {
		status = ledger.StatusSuccess
	}
	record.Status = status
	if result.TxHash != "" {
		hash := result.TxHash
		record.TxHash = &hash
	}
	e.append(store, record)

	e.logger.Info().
		Str("agent", p.Agent).
		Str("pair", from+"-"+to).
		Str("usd_value", usdValue.StringFixed(2)).
		Str("tx_hash", result.TxHash).
		Msg("swap executed")

	return Outcome{
		Status:   status,
		USDValue: usdValue,
		TxHash:   result.TxHash,
		Message:  fmt.Sprintf("swap executed ($%s USD)", usdValue.StringFixed(2)),
		Quote:    &quote,
	}
}

func (e *Executor) checkLocalPolicy(agent config.AgentConfig, store RecordStore, name, from, to string, amount decimal.Decimal) *PolicyViolationError {
	if !agent.PairAllowed(from, to) {
		return &PolicyViolationError{Agent: name, Reason: fmt.Sprintf("pair %s-%s not in allowed pairs", from, to)}
	}

	if agent.MaxDailyTrades > 0 && store != nil {
		count, err := store.CountToday()
		if err != nil {
			return &PolicyViolationError{Agent: name, Reason: fmt.Sprintf("unable to verify daily trade count: %v", err)}
		}
		if count >= agent.MaxDailyTrades {
			return &PolicyViolationError{Agent: name, Reason: fmt.Sprintf("daily limit of %d trades reached", agent.MaxDailyTrades)}
		}
	}

	// For the stable asset the USD value is the amount itself, so the
	// single-trade cap is knowable before any network call.
	if from == e.stable && agent.MaxSingleTradeUSD > 0 {
		limit := decimal.NewFromFloat(agent.MaxSingleTradeUSD)
		if amount.GreaterThan(limit) {
			return &PolicyViolationError{
				Agent:  name,
				Reason: fmt.Sprintf("trade value $%s exceeds single-trade cap $%s", amount.StringFixed(2), limit.StringFixed(2)),
			}
		}
	}

	return nil
}

func (e *Executor) refuse(store RecordStore, record ledger.Record, violation *PolicyViolationError) Outcome {
	record.Status = ledger.StatusFailed
	msg := violation.Error()
	record.Error = &msg
	if record.FromAsset == e.stable && record.USDValue.IsZero() {
		record.USDValue = record.FromAmount
	}
	e.append(store, record)

	e.logger.Warn().Str("agent", violation.Agent).Str("reason", violation.Reason).Msg("proposal refused by policy")
	return Outcome{Status: ledger.StatusFailed, USDValue: record.USDValue, Message: msg}
}

// append writes the decision record. A persistence failure is reported but
// never unwinds a decision that has already been made.
func (e *Executor) append(store RecordStore, record ledger.Record) {
	if store == nil {
		return
	}
	if err := store.Append(record); err != nil {
		e.logger.Error().Err(err).Str("agent", record.Agent).Str("type", record.Type).Msg("failed to append ledger record")
	}
}
