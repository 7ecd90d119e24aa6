// Package alerting delivers sentinel alerts. The primary channel is the
// trigger artifact: a single-slot JSON file an external approver polls.
// Writing a new alert replaces the previous one; the artifact is a mailbox,
// not a log.
package alerting

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AlertTypePrice marks a threshold-crossing price alert.
const AlertTypePrice = "PRICE_ALERT"

// ActionEvaluateTrade is the suggested follow-up carried by a price alert.
const ActionEvaluateTrade = "evaluate_trade"

// Alert is the record handed to the external approver. The wire field names
// are kept from the consumer's existing contract.
type Alert struct {
	Type         string          `json:"type"`
	Message      string          `json:"message"`
	Agent        string          `json:"agent"`
	Account      string          `json:"account"`
	Action       string          `json:"action"`
	FromAsset    string          `json:"from_token"`
	ToAsset      string          `json:"to_token"`
	Amount       decimal.Decimal `json:"amount"`
	PriceUSD     decimal.Decimal `json:"eth_price_usd"`
	ThresholdUSD decimal.Decimal `json:"threshold_usd"`
	Timestamp    time.Time       `json:"timestamp"`
}

// Notifier delivers one alert to a channel.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}
