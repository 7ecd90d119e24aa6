package executor

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"swap-warden/internal/config"
	"swap-warden/internal/ledger"
	"swap-warden/internal/trading"
)

type fakeSwapper struct {
	quote       trading.Quote
	quoteErr    error
	swapResult  trading.SwapResult
	swapErr     error
	quoteCalls  int
	swapCalls   int
	gotSlippage int
}

func (f *fakeSwapper) Quote(_ context.Context, fromAsset, toAsset string, amount decimal.Decimal) (trading.Quote, error) {
	f.quoteCalls++
	if f.quoteErr != nil {
		return trading.Quote{}, f.quoteErr
	}
	q := f.quote
	q.FromAsset = fromAsset
	q.ToAsset = toAsset
	q.FromAmount = amount
	return q, nil
}

func (f *fakeSwapper) ExecuteSwap(_ context.Context, _, _ string, _ decimal.Decimal, slippageBPS int) (trading.SwapResult, error) {
	f.swapCalls++
	f.gotSlippage = slippageBPS
	if f.swapErr != nil {
		return trading.SwapResult{}, f.swapErr
	}
	return f.swapResult, nil
}

type fakeValuer struct {
	value decimal.Decimal
	err   error
	calls int
}

func (f *fakeValuer) USDValue(_ context.Context, _ string, amount decimal.Decimal) (decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return decimal.Decimal{}, f.err
	}
	if f.value.IsZero() {
		return amount, nil
	}
	return f.value, nil
}

type memStore struct {
	records []ledger.Record
	today   int
}

func (m *memStore) Append(record ledger.Record) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memStore) CountToday() (int, error) {
	return m.today, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Trading: config.TradingConfig{StableAsset: "usdc"},
		Policy:  config.PolicyConfig{SlippageBPS: 100, ApprovalThresholdUSD: 100},
		Agents: map[string]config.AgentConfig{
			"F0x": {
				Account:           "0x398f2eE522cF90DAA0710C37e97CabbFDded50bb",
				MaxSingleTradeUSD: 150,
				MaxDailyTrades:    20,
				AllowedPairs:      []string{"usdc-eth", "eth-usdc"},
			},
		},
	}
}

func newTestExecutor(cfg *config.Config, swapper *fakeSwapper, valuer *fakeValuer, store *memStore) *Executor {
	return New(cfg, swapper, valuer, map[string]RecordStore{"F0x": store}, zerolog.Nop())
}

func ethQuote() trading.Quote {
	// 50 USDC buys 0.025 ETH at 18 decimals.
	return trading.Quote{
		ExpectedAmount:     decimal.RequireFromString("25000000000000000"),
		ToDecimals:         18,
		LiquidityAvailable: true,
	}
}

func TestProposeSwapExecutesSmallTrade(t *testing.T) {
	swapper := &fakeSwapper{quote: ethQuote(), swapResult: trading.SwapResult{TxHash: "0xabc", Status: "success"}}
	valuer := &fakeValuer{}
	store := &memStore{}
	exec := newTestExecutor(testConfig(), swapper, valuer, store)

	outcome := exec.ProposeSwap(context.Background(), Proposal{
		FromAsset: "usdc", ToAsset: "eth", Amount: decimal.NewFromInt(50), Agent: "F0x",
	})

	if outcome.Status != ledger.StatusSuccess {
		t.Fatalf("expected success outcome, got %q (%s)", outcome.Status, outcome.Message)
	}
	if outcome.TxHash != "0xabc" {
		t.Fatalf("expected tx hash to flow through, got %q", outcome.TxHash)
	}
	if swapper.swapCalls != 1 {
		t.Fatalf("expected one execute call, got %d", swapper.swapCalls)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected exactly one ledger record, got %d", len(store.records))
	}

	record := store.records[0]
	if record.Type != ledger.TypeSwap || record.Status != ledger.StatusSuccess {
		t.Fatalf("unexpected record type/status: %s/%s", record.Type, record.Status)
	}
	if record.TxHash == nil || *record.TxHash != "0xabc" {
		t.Fatalf("expected tx hash recorded, got %v", record.TxHash)
	}
	if record.ExpectedAmount == nil || !record.ExpectedAmount.Equal(decimal.RequireFromString("0.025")) {
		t.Fatalf("expected human expected amount 0.025, got %v", record.ExpectedAmount)
	}
	if !record.USDValue.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected USD value 50, got %s", record.USDValue)
	}
}

func TestProposeSwapDefersLargeTrade(t *testing.T) {
	swapper := &fakeSwapper{quote: ethQuote()}
	valuer := &fakeValuer{}
	store := &memStore{}
	exec := newTestExecutor(testConfig(), swapper, valuer, store)

	outcome := exec.ProposeSwap(context.Background(), Proposal{
		FromAsset: "usdc", ToAsset: "eth", Amount: decimal.NewFromInt(120), Agent: "F0x",
	})

	if outcome.Status != ledger.StatusRequiresApproval {
		t.Fatalf("expected requires_approval, got %q (%s)", outcome.Status, outcome.Message)
	}
	if swapper.swapCalls != 0 {
		t.Fatalf("deferred trade must not execute, got %d execute calls", swapper.swapCalls)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected exactly one ledger record, got %d", len(store.records))
	}

	record := store.records[0]
	if record.Type != ledger.TypeSwapPendingApproval {
		t.Fatalf("expected pending-approval record type, got %q", record.Type)
	}
	if record.Status != ledger.StatusRequiresApproval {
		t.Fatalf("expected requires_approval status, got %q", record.Status)
	}
	if !strings.Contains(outcome.Message, "requires manual confirmation") {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
}

func TestProposeSwapRefusesDisallowedPair(t *testing.T) {
	swapper := &fakeSwapper{}
	valuer := &fakeValuer{}
	store := &memStore{}
	exec := newTestExecutor(testConfig(), swapper, valuer, store)

	outcome := exec.ProposeSwap(context.Background(), Proposal{
		FromAsset: "eth", ToAsset: "dai", Amount: decimal.NewFromFloat(0.1), Agent: "F0x",
	})

	if outcome.Status != ledger.StatusFailed {
		t.Fatalf("expected failed outcome, got %q", outcome.Status)
	}
	if valuer.calls != 0 || swapper.quoteCalls != 0 || swapper.swapCalls != 0 {
		t.Fatal("policy refusal must make no network calls")
	}
	if len(store.records) != 1 {
		t.Fatalf("refusal must still be recorded, got %d records", len(store.records))
	}
	if store.records[0].Error == nil || !strings.Contains(*store.records[0].Error, "not in allowed pairs") {
		t.Fatalf("unexpected record error: %v", store.records[0].Error)
	}
}

func TestProposeSwapRefusesAtDailyLimit(t *testing.T) {
	swapper := &fakeSwapper{}
	valuer := &fakeValuer{}
	store := &memStore{today: 20}
	exec := newTestExecutor(testConfig(), swapper, valuer, store)

	outcome := exec.ProposeSwap(context.Background(), Proposal{
		FromAsset: "usdc", ToAsset: "eth", Amount: decimal.NewFromInt(10), Agent: "F0x",
	})

	if outcome.Status != ledger.StatusFailed {
		t.Fatalf("expected failed outcome, got %q", outcome.Status)
	}
	if !strings.Contains(outcome.Message, "daily limit") {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
	if valuer.calls != 0 || swapper.quoteCalls != 0 {
		t.Fatal("daily-limit refusal must make no network calls")
	}
}

func TestProposeSwapRefusesStableOverCapBeforeNetwork(t *testing.T) {
	swapper := &fakeSwapper{}
	valuer := &fakeValuer{}
	store := &memStore{}
	exec := newTestExecutor(testConfig(), swapper, valuer, store)

	outcome := exec.ProposeSwap(context.Background(), Proposal{
		FromAsset: "usdc", ToAsset: "eth", Amount: decimal.NewFromInt(200), Agent: "F0x",
	})

	if outcome.Status != ledger.StatusFailed {
		t.Fatalf("expected failed outcome, got %q", outcome.Status)
	}
	if valuer.calls != 0 || swapper.quoteCalls != 0 || swapper.swapCalls != 0 {
		t.Fatal("stable-source cap is locally knowable; no network calls expected")
	}
	// USD value of a stable amount is the amount itself.
	if !store.records[0].USDValue.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected recorded USD value 200, got %s", store.records[0].USDValue)
	}
}

func TestProposeSwapRefusesVolatileOverCapAfterValuation(t *testing.T) {
	swapper := &fakeSwapper{}
	valuer := &fakeValuer{value: decimal.NewFromInt(180)}
	store := &memStore{}
	exec := newTestExecutor(testConfig(), swapper, valuer, store)

	outcome := exec.ProposeSwap(context.Background(), Proposal{
		FromAsset: "eth", ToAsset: "usdc", Amount: decimal.NewFromFloat(0.1), Agent: "F0x",
	})

	if outcome.Status != ledger.StatusFailed {
		t.Fatalf("expected failed outcome, got %q", outcome.Status)
	}
	if valuer.calls != 1 {
		t.Fatalf("volatile cap needs exactly one valuation, got %d", valuer.calls)
	}
	if swapper.quoteCalls != 0 || swapper.swapCalls != 0 {
		t.Fatal("cap refusal must precede quoting and execution")
	}
	if !strings.Contains(outcome.Message, "single-trade cap") {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
}

func TestProposeSwapRefusesUnknownAgent(t *testing.T) {
	swapper := &fakeSwapper{}
	valuer := &fakeValuer{}
	store := &memStore{}
	exec := newTestExecutor(testConfig(), swapper, valuer, store)

	outcome := exec.ProposeSwap(context.Background(), Proposal{
		FromAsset: "usdc", ToAsset: "eth", Amount: decimal.NewFromInt(10), Agent: "Ghost",
	})

	if outcome.Status != ledger.StatusFailed {
		t.Fatalf("expected failed outcome, got %q", outcome.Status)
	}
	if !strings.Contains(outcome.Message, "unknown agent") {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
	if len(store.records) != 0 {
		t.Fatalf("unknown agent has no ledger, got %d records", len(store.records))
	}
}

func TestProposeSwapRecordsValuationFailure(t *testing.T) {
	swapper := &fakeSwapper{}
	valuer := &fakeValuer{err: context.DeadlineExceeded}
	store := &memStore{}
	exec := newTestExecutor(testConfig(), swapper, valuer, store)

	outcome := exec.ProposeSwap(context.Background(), Proposal{
		FromAsset: "eth", ToAsset: "usdc", Amount: decimal.NewFromFloat(0.1), Agent: "F0x",
	})

	if outcome.Status != ledger.StatusFailed {
		t.Fatalf("expected failed outcome, got %q", outcome.Status)
	}
	if !strings.Contains(outcome.Message, "failed to calculate USD value") {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
	if swapper.quoteCalls != 0 || swapper.swapCalls != 0 {
		t.Fatal("valuation failure must stop the pipeline")
	}
	if len(store.records) != 1 || store.records[0].Status != ledger.StatusFailed {
		t.Fatalf("expected one failed record, got %+v", store.records)
	}
}

func TestProposeSwapRecordsQuoteFailure(t *testing.T) {
	swapper := &fakeSwapper{quoteErr: &trading.APIError{StatusCode: 502, Message: "upstream down"}}
	valuer := &fakeValuer{}
	store := &memStore{}
	exec := newTestExecutor(testConfig(), swapper, valuer, store)

	outcome := exec.ProposeSwap(context.Background(), Proposal{
		FromAsset: "usdc", ToAsset: "eth", Amount: decimal.NewFromInt(50), Agent: "F0x",
	})

	if outcome.Status != ledger.StatusFailed {
		t.Fatalf("expected failed outcome, got %q", outcome.Status)
	}
	if !strings.Contains(outcome.Message, "failed to get quote") {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
	if swapper.swapCalls != 0 {
		t.Fatal("quote failure must not reach execution")
	}
}

func TestProposeSwapRecordsExecutionFailure(t *testing.T) {
	swapper := &fakeSwapper{quote: ethQuote(), swapErr: &trading.APIError{StatusCode: 400, ErrorType: "insufficient_balance"}}
	valuer := &fakeValuer{}
	store := &memStore{}
	exec := newTestExecutor(testConfig(), swapper, valuer, store)

	outcome := exec.ProposeSwap(context.Background(), Proposal{
		FromAsset: "usdc", ToAsset: "eth", Amount: decimal.NewFromInt(50), Agent: "F0x",
	})

	if outcome.Status != ledger.StatusFailed {
		t.Fatalf("expected failed outcome, got %q", outcome.Status)
	}
	if !strings.Contains(outcome.Message, "swap failed") {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
	if len(store.records) != 1 || store.records[0].Error == nil {
		t.Fatalf("expected one failed record with error, got %+v", store.records)
	}
}

func TestProposeSwapIgnoresRequestedSlippage(t *testing.T) {
	swapper := &fakeSwapper{quote: ethQuote(), swapResult: trading.SwapResult{TxHash: "0xdef"}}
	valuer := &fakeValuer{}
	store := &memStore{}
	exec := newTestExecutor(testConfig(), swapper, valuer, store)

	outcome := exec.ProposeSwap(context.Background(), Proposal{
		FromAsset: "usdc", ToAsset: "eth", Amount: decimal.NewFromInt(50), Agent: "F0x",
		RequestedSlippageBPS: 9999,
	})

	if outcome.Status != ledger.StatusSuccess {
		t.Fatalf("expected success outcome, got %q (%s)", outcome.Status, outcome.Message)
	}
	if swapper.gotSlippage != 100 {
		t.Fatalf("expected policy slippage 100 bps, got %d", swapper.gotSlippage)
	}
	if store.records[0].SlippageBPS != 100 {
		t.Fatalf("expected policy slippage recorded, got %d", store.records[0].SlippageBPS)
	}
}
