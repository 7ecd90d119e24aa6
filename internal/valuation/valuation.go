// Package valuation converts token amounts into USD values using the
// external trading API as the price source. A failed lookup is always an
// explicit error; callers never see a silent zero for a non-zero amount.
package valuation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"swap-warden/internal/trading"
)

// UnsupportedAssetError reports a symbol the adapter cannot value.
type UnsupportedAssetError struct {
	Asset string
}

func (e *UnsupportedAssetError) Error() string {
	return fmt.Sprintf("unsupported asset: %s", e.Asset)
}

// Quoter is the slice of the trading client the adapter needs.
type Quoter interface {
	Quote(ctx context.Context, fromAsset, toAsset string, amount decimal.Decimal) (trading.Quote, error)
}

// Adapter values token amounts in USD. The stable asset is defined as
// exactly $1 per unit and never priced over the network.
type Adapter struct {
	quoter Quoter
	stable string
	logger zerolog.Logger
}

// New constructs a valuation adapter.
func New(quoter Quoter, stableAsset string, logger zerolog.Logger) *Adapter {
	return &Adapter{
		quoter: quoter,
		stable: strings.ToLower(stableAsset),
		logger: logger.With().Str("component", "valuation").Logger(),
	}
}

// UnitPrice returns the current USD price of one unit of asset.
func (a *Adapter) UnitPrice(ctx context.Context, asset string) (decimal.Decimal, error) {
	symbol := strings.ToLower(asset)
	if symbol == a.stable {
		return decimal.NewFromInt(1), nil
	}

	quote, err := a.quoter.Quote(ctx, symbol, a.stable, decimal.NewFromInt(1))
	if err != nil {
		if errors.Is(err, trading.ErrUnsupportedAsset) {
			return decimal.Decimal{}, &UnsupportedAssetError{Asset: asset}
		}
		return decimal.Decimal{}, fmt.Errorf("price lookup for %s: %w", symbol, err)
	}

	if !quote.LiquidityAvailable {
		return decimal.Decimal{}, fmt.Errorf("no liquidity for %s-%s", symbol, a.stable)
	}

	price := quote.ExpectedHuman()
	if price.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("unit price for %s returned zero", symbol)
	}

	return price, nil
}

// USDValue converts amount (human units of asset) into USD.
func (a *Adapter) USDValue(ctx context.Context, asset string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Sign() < 0 {
		return decimal.Decimal{}, fmt.Errorf("amount cannot be negative: %s", amount)
	}

	symbol := strings.ToLower(asset)
	if symbol == a.stable {
		return amount, nil
	}

	price, err := a.UnitPrice(ctx, symbol)
	if err != nil {
		return decimal.Decimal{}, err
	}

	value := amount.Mul(price)
	a.logger.Debug().
		Str("asset", symbol).
		Str("amount", amount.String()).
		Str("unit_price", price.String()).
		Str("usd_value", value.String()).
		Msg("valued amount")

	return value, nil
}
