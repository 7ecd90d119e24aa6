package trading

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func testTokens() map[string]Token {
	return map[string]Token{
		"usdc": {Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Decimals: 6},
		"eth":  {Address: "0x4200000000000000000000000000000000000006", Decimals: 18},
	}
}

func newTestClient(t *testing.T, url string) *HTTPClient {
	t.Helper()
	client, err := NewHTTPClient(Options{
		BaseURL:      url,
		APIKeyID:     "key-id",
		APIKeySecret: "key-secret",
		Network:      "base",
		Timeout:      time.Second,
		Tokens:       testTokens(),
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("client construction failed: %v", err)
	}
	return client
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	if _, err := NewHTTPClient(Options{}, zerolog.Nop()); err == nil {
		t.Fatal("missing base URL must error")
	}
}

func TestQuoteSuccess(t *testing.T) {
	var gotBody quoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/quote" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Api-Key-Id") != "key-id" || r.Header.Get("X-Api-Key-Secret") != "key-secret" {
			t.Fatal("auth headers missing")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(quoteResponse{
			ExpectedAmount:     "25000000000000000",
			Price:              "1850.00",
			LiquidityAvailable: true,
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer client.Close()

	quote, err := client.Quote(context.Background(), "usdc", "eth", decimal.NewFromInt(50))
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}

	if gotBody.FromToken != testTokens()["usdc"].Address {
		t.Fatalf("expected source token address on the wire, got %q", gotBody.FromToken)
	}
	if gotBody.Network != "base" {
		t.Fatalf("expected network base, got %q", gotBody.Network)
	}
	if !quote.LiquidityAvailable {
		t.Fatal("expected liquidity flag to flow through")
	}
	if quote.ToDecimals != 18 {
		t.Fatalf("expected destination decimals 18, got %d", quote.ToDecimals)
	}
	if !quote.ExpectedHuman().Equal(decimal.RequireFromString("0.025")) {
		t.Fatalf("expected human amount 0.025, got %s", quote.ExpectedHuman())
	}
}

func TestQuoteUnsupportedAssetIsLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an unknown symbol")
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer client.Close()

	_, err := client.Quote(context.Background(), "doge", "usdc", decimal.NewFromInt(1))
	if !errors.Is(err, ErrUnsupportedAsset) {
		t.Fatalf("expected ErrUnsupportedAsset, got %v", err)
	}
}

func TestQuoteRejectsNonPositiveAmount(t *testing.T) {
	client := newTestClient(t, "http://localhost:1")
	defer client.Close()

	if _, err := client.Quote(context.Background(), "usdc", "eth", decimal.Zero); err == nil {
		t.Fatal("zero amount must error")
	}
}

func TestErrorEnvelopeBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error_type": "insufficient_balance",
			"message":    "not enough USDC",
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer client.Close()

	_, err := client.ExecuteSwap(context.Background(), "usdc", "eth", decimal.NewFromInt(50), 100)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", apiErr.StatusCode)
	}
	if apiErr.ErrorType != "insufficient_balance" {
		t.Fatalf("expected error type preserved, got %q", apiErr.ErrorType)
	}
	if apiErr.Message != "not enough USDC" {
		t.Fatalf("expected message preserved, got %q", apiErr.Message)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream maintenance"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer client.Close()

	_, err := client.WalletInfo(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "upstream maintenance" {
		t.Fatalf("expected raw body preserved, got %q", apiErr.Message)
	}
}

func TestExecuteSwapSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/swap" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body swapRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.SlippageBPS != 100 {
			t.Fatalf("expected slippage 100 on the wire, got %d", body.SlippageBPS)
		}
		_ = json.NewEncoder(w).Encode(swapResponse{TxHash: "0xfeed", Status: "success"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer client.Close()

	result, err := client.ExecuteSwap(context.Background(), "usdc", "eth", decimal.NewFromInt(50), 100)
	if err != nil {
		t.Fatalf("swap failed: %v", err)
	}
	if result.TxHash != "0xfeed" || result.Status != "success" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestBalanceSuccess(t *testing.T) {
	address := "0x398f2eE522cF90DAA0710C37e97CabbFDded50bb"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/balance/"+address {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("network") != "base" {
			t.Fatalf("expected network query param, got %q", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(balanceResponse{
			Address:       address,
			NativeBalance: "0.75",
			StableBalance: "120.50",
			OtherTokens:   map[string]string{"dai": "3"},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer client.Close()

	balance, err := client.Balance(context.Background(), address)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !balance.NativeBalance.Equal(decimal.RequireFromString("0.75")) {
		t.Fatalf("unexpected native balance %s", balance.NativeBalance)
	}
	if !balance.StableBalance.Equal(decimal.RequireFromString("120.50")) {
		t.Fatalf("unexpected stable balance %s", balance.StableBalance)
	}
	if !balance.OtherTokens["dai"].Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected other tokens %+v", balance.OtherTokens)
	}
}

func TestWalletInfoSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wallet" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(walletResponse{Address: "0xabc", Identifier: "warden", Network: "base"})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	defer client.Close()

	info, err := client.WalletInfo(context.Background())
	if err != nil {
		t.Fatalf("wallet info failed: %v", err)
	}
	if info.Address != "0xabc" || info.Network != "base" {
		t.Fatalf("unexpected info: %+v", info)
	}
}
