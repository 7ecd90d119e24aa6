package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"swap-warden/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig              `mapstructure:"app"`
	Logging  logging.Config         `mapstructure:"logging"`
	Trading  TradingConfig          `mapstructure:"trading"`
	Policy   PolicyConfig           `mapstructure:"policy"`
	Ledger   LedgerConfig           `mapstructure:"ledger"`
	Sentinel SentinelConfig         `mapstructure:"sentinel"`
	Alerting AlertingConfig         `mapstructure:"alerting"`
	Agents   map[string]AgentConfig `mapstructure:"agents"`
	Tokens   map[string]TokenConfig `mapstructure:"tokens"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// TradingConfig covers connectivity to the external trading API.
type TradingConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKeyID       string        `mapstructure:"api_key_id"`
	APIKeySecret   string        `mapstructure:"api_key_secret"`
	Network        string        `mapstructure:"network"`
	StableAsset    string        `mapstructure:"stable_asset"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// PolicyConfig holds the fixed trading policy. These values gate every
// proposed swap; an agent cannot widen them at call time.
type PolicyConfig struct {
	SlippageBPS          int     `mapstructure:"slippage_bps"`
	ApprovalThresholdUSD float64 `mapstructure:"approval_threshold_usd"`
}

// LedgerConfig locates the transaction ledger on disk.
type LedgerConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// SentinelConfig governs the price monitoring loop.
type SentinelConfig struct {
	Agent         string        `mapstructure:"agent"`
	Asset         string        `mapstructure:"asset"`
	ThresholdUSD  float64       `mapstructure:"threshold_usd"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// AlertingConfig defines where alerts land.
type AlertingConfig struct {
	TriggerDir string        `mapstructure:"trigger_dir"`
	Webhook    WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig describes an optional secondary alert channel.
type WebhookConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AgentConfig binds an agent to one account and its trading limits.
type AgentConfig struct {
	Account           string   `mapstructure:"account"`
	MaxBalanceUSD     float64  `mapstructure:"max_balance_usd"`
	MaxSingleTradeUSD float64  `mapstructure:"max_single_trade_usd"`
	MaxDailyTrades    int      `mapstructure:"max_daily_trades"`
	AllowedPairs      []string `mapstructure:"allowed_pairs"`
}

// TokenConfig maps an asset symbol to its on-chain identity.
type TokenConfig struct {
	Address  string `mapstructure:"address"`
	Decimals int    `mapstructure:"decimals"`
}

// PairAllowed reports whether from-to is in the agent's allow list.
func (a AgentConfig) PairAllowed(from, to string) bool {
	pair := strings.ToLower(from) + "-" + strings.ToLower(to)
	for _, allowed := range a.AllowedPairs {
		if strings.EqualFold(allowed, pair) {
			return true
		}
	}
	return false
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SWAPWARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.Agents) == 0 {
		cfg.Agents = defaultAgents()
	}
	if len(cfg.Tokens) == 0 {
		cfg.Tokens = defaultTokens()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "swapwarden")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("trading.network", "base")
	v.SetDefault("trading.stable_asset", "usdc")
	v.SetDefault("trading.request_timeout", "10s")
	v.SetDefault("trading.user_agent", "swapwarden/1.0")

	v.SetDefault("policy.slippage_bps", 100)
	v.SetDefault("policy.approval_threshold_usd", 100.0)

	v.SetDefault("ledger.base_dir", "data")

	v.SetDefault("sentinel.agent", "F0x")
	v.SetDefault("sentinel.asset", "eth")
	v.SetDefault("sentinel.threshold_usd", 2000.0)
	v.SetDefault("sentinel.check_interval", "60s")
	v.SetDefault("sentinel.startup_delay", "0s")

	v.SetDefault("alerting.trigger_dir", "triggers")
	v.SetDefault("alerting.webhook.enabled", false)
	v.SetDefault("alerting.webhook.timeout", "10s")
}

func defaultAgents() map[string]AgentConfig {
	return map[string]AgentConfig{
		"F0x": {
			Account:           "0x398f2eE522cF90DAA0710C37e97CabbFDded50bb",
			MaxBalanceUSD:     2.00,
			MaxSingleTradeUSD: 0.50,
			MaxDailyTrades:    20,
			AllowedPairs:      []string{"usdc-eth", "eth-usdc"},
		},
		"PinchyMeow": {
			Account:           "0x145177cd8f0AD7aDE30de1CF65B13f5f45E19e91",
			MaxBalanceUSD:     2.00,
			MaxSingleTradeUSD: 0.50,
			MaxDailyTrades:    20,
			AllowedPairs:      []string{"usdc-eth", "eth-usdc"},
		},
	}
}

func defaultTokens() map[string]TokenConfig {
	return map[string]TokenConfig{
		"usdc": {Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Decimals: 6},
		"eth":  {Address: "0x4200000000000000000000000000000000000006", Decimals: 18},
	}
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
// Account and token addresses are normalised to their checksum form.
func (c *Config) Validate() error {
	if c.Policy.SlippageBPS <= 0 {
		return fmt.Errorf("policy.slippage_bps must be greater than zero")
	}
	if c.Policy.ApprovalThresholdUSD < 0 {
		return fmt.Errorf("policy.approval_threshold_usd cannot be negative")
	}
	if c.Ledger.BaseDir == "" {
		return fmt.Errorf("ledger.base_dir must be configured")
	}
	if c.Sentinel.CheckInterval <= 0 {
		return fmt.Errorf("sentinel.check_interval must be greater than zero")
	}
	if c.Sentinel.ThresholdUSD <= 0 {
		return fmt.Errorf("sentinel.threshold_usd must be greater than zero")
	}
	if c.Trading.StableAsset == "" {
		return fmt.Errorf("trading.stable_asset must be configured")
	}
	if _, ok := c.Tokens[strings.ToLower(c.Trading.StableAsset)]; !ok {
		return fmt.Errorf("trading.stable_asset %q has no entry in tokens", c.Trading.StableAsset)
	}
	if c.Alerting.Webhook.Enabled && c.Alerting.Webhook.URL == "" {
		return fmt.Errorf("alerting.webhook.url must be configured when the webhook is enabled")
	}

	for name, agent := range c.Agents {
		if !common.IsHexAddress(agent.Account) {
			return fmt.Errorf("agents.%s.account %q is not a valid address", name, agent.Account)
		}
		agent.Account = common.HexToAddress(agent.Account).Hex()
		if agent.MaxSingleTradeUSD < 0 {
			return fmt.Errorf("agents.%s.max_single_trade_usd cannot be negative", name)
		}
		if agent.MaxDailyTrades < 0 {
			return fmt.Errorf("agents.%s.max_daily_trades cannot be negative", name)
		}
		for _, pair := range agent.AllowedPairs {
			if strings.Count(pair, "-") != 1 {
				return fmt.Errorf("agents.%s.allowed_pairs entry %q is not of the form from-to", name, pair)
			}
		}
		c.Agents[name] = agent
	}

	for symbol, token := range c.Tokens {
		if !common.IsHexAddress(token.Address) {
			return fmt.Errorf("tokens.%s.address %q is not a valid address", symbol, token.Address)
		}
		token.Address = common.HexToAddress(token.Address).Hex()
		if token.Decimals <= 0 {
			return fmt.Errorf("tokens.%s.decimals must be greater than zero", symbol)
		}
		c.Tokens[symbol] = token
	}

	return nil
}

// Agent returns the configuration for a named agent.
func (c *Config) Agent(name string) (AgentConfig, bool) {
	agent, ok := c.Agents[name]
	return agent, ok
}
