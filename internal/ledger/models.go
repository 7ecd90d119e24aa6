package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record types.
const (
	TypeSwap                = "swap"
	TypeSwapPendingApproval = "swap_pending_approval"
)

// Record statuses.
const (
	StatusSuccess          = "success"
	StatusFailed           = "failed"
	StatusPending          = "pending"
	StatusRequiresApproval = "requires_approval"
)

// Record is the persisted unit of the ledger: one swap decision and its
// outcome. Once appended it is never edited or deleted.
type Record struct {
	Timestamp      time.Time        `json:"timestamp"`
	Type           string           `json:"type"`
	Agent          string           `json:"agent"`
	Account        string           `json:"account"`
	FromAsset      string           `json:"from_token"`
	ToAsset        string           `json:"to_token"`
	FromAmount     decimal.Decimal  `json:"from_amount"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty"`
	USDValue       decimal.Decimal  `json:"usd_value"`
	SlippageBPS    int              `json:"slippage_bps"`
	Status         string           `json:"status"`
	TxHash         *string          `json:"tx_hash"`
	Error          *string          `json:"error,omitempty"`
}

// AgentStats is one agent's share of a day's activity.
type AgentStats struct {
	Count     int
	Success   int
	Failed    int
	Pending   int
	VolumeUSD decimal.Decimal
}

// DailyStats aggregates one UTC calendar day of records. Derived on demand,
// never cached.
type DailyStats struct {
	Date           string
	TotalTx        int
	SuccessTx      int
	FailedTx       int
	PendingTx      int
	UnknownTx      int
	TotalVolumeUSD decimal.Decimal
	Agents         map[string]AgentStats
}
