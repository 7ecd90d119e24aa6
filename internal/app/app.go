package app

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"swap-warden/internal/alerting"
	"swap-warden/internal/config"
	"swap-warden/internal/executor"
	"swap-warden/internal/ledger"
	"swap-warden/internal/trading"
	"swap-warden/internal/valuation"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// newTradingClient dials the trading API. The returned handle is owned by
// the caller and must be closed when the command finishes.
func (a *App) newTradingClient() (*trading.HTTPClient, error) {
	tokens := make(map[string]trading.Token, len(a.Config.Tokens))
	for symbol, token := range a.Config.Tokens {
		tokens[symbol] = trading.Token{Address: token.Address, Decimals: token.Decimals}
	}

	return trading.NewHTTPClient(trading.Options{
		BaseURL:      a.Config.Trading.BaseURL,
		APIKeyID:     a.Config.Trading.APIKeyID,
		APIKeySecret: a.Config.Trading.APIKeySecret,
		Network:      a.Config.Trading.Network,
		Timeout:      a.Config.Trading.RequestTimeout,
		UserAgent:    a.Config.Trading.UserAgent,
		Tokens:       tokens,
	}, a.Logger)
}

func (a *App) newValuer(quoter valuation.Quoter) *valuation.Adapter {
	return valuation.New(quoter, a.Config.Trading.StableAsset, a.Logger)
}

// openLedgers binds one ledger per configured agent.
func (a *App) openLedgers() map[string]executor.RecordStore {
	stores := make(map[string]executor.RecordStore, len(a.Config.Agents))
	for name := range a.Config.Agents {
		stores[name] = ledger.Open(a.Config.Ledger.BaseDir, name, a.Logger)
	}
	return stores
}

// agentNames returns all configured agent names in stable order.
func (a *App) agentNames() []string {
	names := make([]string, 0, len(a.Config.Agents))
	for name := range a.Config.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *App) newNotifiers() []alerting.Notifier {
	notifiers := []alerting.Notifier{
		alerting.NewFileTrigger(a.Config.Alerting.TriggerDir, a.Logger),
	}
	if a.Config.Alerting.Webhook.Enabled {
		webhook := a.Config.Alerting.Webhook
		notifiers = append(notifiers, alerting.NewWebhookNotifier(webhook.URL, webhook.Timeout, a.Logger))
	}
	return notifiers
}

// SwapOptions hold parameters for a swap proposal.
type SwapOptions struct {
	FromAsset   string
	ToAsset     string
	Amount      decimal.Decimal
	Agent       string
	SlippageBPS int
}

// ReportOptions configure the daily report.
type ReportOptions struct {
	Date  string
	Agent string
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Agent string
	Date  string
	Limit int
}

// ExportOptions hold parameters for exporting ledger history.
type ExportOptions struct {
	From    time.Time
	To      time.Time
	CSVPath string
	PNGPath string
}
