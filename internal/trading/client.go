package trading

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedAsset marks a symbol with no entry in the token registry.
// It is detected locally, before any request is issued.
var ErrUnsupportedAsset = errors.New("unsupported asset")

// Quote is the priced result of a prospective swap. ExpectedAmount is in the
// destination asset's base units; ToDecimals carries the scale needed to
// interpret it.
type Quote struct {
	FromAsset          string
	ToAsset            string
	FromAmount         decimal.Decimal
	ExpectedAmount     decimal.Decimal
	ToDecimals         int
	Price              decimal.Decimal
	LiquidityAvailable bool
}

// ExpectedHuman returns the expected destination amount in human units.
func (q Quote) ExpectedHuman() decimal.Decimal {
	return q.ExpectedAmount.Shift(int32(-q.ToDecimals))
}

// SwapResult reports an executed swap.
type SwapResult struct {
	TxHash string
	Status string
}

// Balance holds the balances of one account.
type Balance struct {
	Address       string
	NativeBalance decimal.Decimal
	StableBalance decimal.Decimal
	OtherTokens   map[string]decimal.Decimal
}

// WalletInfo identifies the wallet behind the trading API.
type WalletInfo struct {
	Address    string
	Identifier string
	Network    string
}

// Client is the boundary to the external trading API. The handle is owned by
// whichever component created it and must be released with Close.
type Client interface {
	Quote(ctx context.Context, fromAsset, toAsset string, amount decimal.Decimal) (Quote, error)
	ExecuteSwap(ctx context.Context, fromAsset, toAsset string, amount decimal.Decimal, slippageBPS int) (SwapResult, error)
	Balance(ctx context.Context, address string) (Balance, error)
	WalletInfo(ctx context.Context) (WalletInfo, error)
	Close() error
}

// APIError is a domain error reported by the trading API.
type APIError struct {
	StatusCode int
	ErrorType  string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("trading api error (%d): %s", e.StatusCode, e.Message)
	}
	if e.ErrorType != "" {
		return fmt.Sprintf("trading api error (%d): %s", e.StatusCode, e.ErrorType)
	}
	return fmt.Sprintf("trading api error (%d)", e.StatusCode)
}
