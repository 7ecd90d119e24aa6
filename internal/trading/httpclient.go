package trading

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	quotePath   = "/quote"
	swapPath    = "/swap"
	balancePath = "/balance"
	walletPath  = "/wallet"
)

// Token describes one tradable asset known to the client.
type Token struct {
	Address  string
	Decimals int
}

// Options parameterise the HTTP trading client.
type Options struct {
	BaseURL      string
	APIKeyID     string
	APIKeySecret string
	Network      string
	Timeout      time.Duration
	UserAgent    string
	Tokens       map[string]Token
}

// HTTPClient talks to the trading API over HTTP with a fixed response
// contract for every operation.
type HTTPClient struct {
	opts    Options
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewHTTPClient constructs a trading client.
func NewHTTPClient(opts Options, logger zerolog.Logger) (*HTTPClient, error) {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("trading base_url not configured")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPClient{
		opts:    opts,
		logger:  logger.With().Str("component", "trading_client").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}, nil
}

func (c *HTTPClient) token(symbol string) (Token, error) {
	token, ok := c.opts.Tokens[strings.ToLower(symbol)]
	if !ok {
		return Token{}, fmt.Errorf("%w: %s", ErrUnsupportedAsset, symbol)
	}
	return token, nil
}

type quoteRequest struct {
	FromToken string `json:"from_token"`
	ToToken   string `json:"to_token"`
	Network   string `json:"network"`
	Amount    string `json:"amount"`
}

type quoteResponse struct {
	ExpectedAmount     string `json:"expected_amount"`
	Price              string `json:"price"`
	LiquidityAvailable bool   `json:"liquidity_available"`
}

// Quote prices a prospective swap of amount (human units of fromAsset).
func (c *HTTPClient) Quote(ctx context.Context, fromAsset, toAsset string, amount decimal.Decimal) (Quote, error) {
	from, err := c.token(fromAsset)
	if err != nil {
		return Quote{}, err
	}
	to, err := c.token(toAsset)
	if err != nil {
		return Quote{}, err
	}
	if amount.Sign() <= 0 {
		return Quote{}, errors.New("quote amount must be greater than zero")
	}

	payload := quoteRequest{
		FromToken: from.Address,
		ToToken:   to.Address,
		Network:   c.opts.Network,
		Amount:    amount.String(),
	}

	var res quoteResponse
	if err := c.post(ctx, quotePath, payload, &res); err != nil {
		return Quote{}, err
	}

	expected, err := decimal.NewFromString(res.ExpectedAmount)
	if err != nil {
		return Quote{}, fmt.Errorf("parse expected amount: %w", err)
	}

	price := decimal.Zero
	if res.Price != "" {
		if price, err = decimal.NewFromString(res.Price); err != nil {
			return Quote{}, fmt.Errorf("parse price: %w", err)
		}
	}

	return Quote{
		FromAsset:          strings.ToLower(fromAsset),
		ToAsset:            strings.ToLower(toAsset),
		FromAmount:         amount,
		ExpectedAmount:     expected,
		ToDecimals:         to.Decimals,
		Price:              price,
		LiquidityAvailable: res.LiquidityAvailable,
	}, nil
}

type swapRequest struct {
	FromToken   string `json:"from_token"`
	ToToken     string `json:"to_token"`
	Network     string `json:"network"`
	Amount      string `json:"amount"`
	SlippageBPS int    `json:"slippage_bps"`
}

type swapResponse struct {
	TxHash string `json:"tx_hash"`
	Status string `json:"status"`
}

// ExecuteSwap submits a swap for on-chain execution.
func (c *HTTPClient) ExecuteSwap(ctx context.Context, fromAsset, toAsset string, amount decimal.Decimal, slippageBPS int) (SwapResult, error) {
	from, err := c.token(fromAsset)
	if err != nil {
		return SwapResult{}, err
	}
	to, err := c.token(toAsset)
	if err != nil {
		return SwapResult{}, err
	}

	payload := swapRequest{
		FromToken:   from.Address,
		ToToken:     to.Address,
		Network:     c.opts.Network,
		Amount:      amount.String(),
		SlippageBPS: slippageBPS,
	}

	var res swapResponse
	if err := c.post(ctx, swapPath, payload, &res); err != nil {
		return SwapResult{}, err
	}

	return SwapResult{TxHash: res.TxHash, Status: res.Status}, nil
}

type balanceResponse struct {
	Address       string            `json:"address"`
	NativeBalance string            `json:"native_balance"`
	StableBalance string            `json:"stable_balance"`
	OtherTokens   map[string]string `json:"other_tokens"`
}

// Balance returns the balances of one account address.
func (c *HTTPClient) Balance(ctx context.Context, address string) (Balance, error) {
	if address == "" {
		return Balance{}, errors.New("balance address required")
	}

	var res balanceResponse
	path := balancePath + "/" + address + "?network=" + c.opts.Network
	if err := c.get(ctx, path, &res); err != nil {
		return Balance{}, err
	}

	native, err := decimal.NewFromString(res.NativeBalance)
	if err != nil {
		return Balance{}, fmt.Errorf("parse native balance: %w", err)
	}
	stable, err := decimal.NewFromString(res.StableBalance)
	if err != nil {
		return Balance{}, fmt.Errorf("parse stable balance: %w", err)
	}

	other := make(map[string]decimal.Decimal, len(res.OtherTokens))
	for symbol, raw := range res.OtherTokens {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return Balance{}, fmt.Errorf("parse %s balance: %w", symbol, err)
		}
		other[symbol] = amount
	}

	return Balance{
		Address:       res.Address,
		NativeBalance: native,
		StableBalance: stable,
		OtherTokens:   other,
	}, nil
}

type walletResponse struct {
	Address    string `json:"address"`
	Identifier string `json:"identifier"`
	Network    string `json:"network"`
}

// WalletInfo returns metadata for the wallet bound to the API credentials.
func (c *HTTPClient) WalletInfo(ctx context.Context) (WalletInfo, error) {
	var res walletResponse
	if err := c.get(ctx, walletPath, &res); err != nil {
		return WalletInfo{}, err
	}
	return WalletInfo{Address: res.Address, Identifier: res.Identifier, Network: res.Network}, nil
}

// Close releases the underlying HTTP resources.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if c.opts.APIKeyID != "" {
		req.Header.Set("X-Api-Key-Id", c.opts.APIKeyID)
		req.Header.Set("X-Api-Key-Secret", c.opts.APIKeySecret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return parseHTTPError(resp.StatusCode, payload)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

type errorResponse struct {
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.ErrorType != "" || apiErr.Message != "" {
			return &APIError{StatusCode: status, ErrorType: apiErr.ErrorType, Message: apiErr.Message}
		}
	}
	if len(payload) > 0 {
		return &APIError{StatusCode: status, Message: strings.TrimSpace(string(payload))}
	}
	return &APIError{StatusCode: status}
}

var _ Client = (*HTTPClient)(nil)
