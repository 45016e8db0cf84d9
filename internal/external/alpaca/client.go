// Package alpaca is a thin client for the Alpaca paper trading API.
// Orders go out as market bracket orders carrying the stop-loss and
// take-profit legs computed by position sizing.
package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/internal/execution"
	"github.com/alphaframe/alphaframe/pkg/httputil"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// PaperBaseURL is the paper trading endpoint; live routing is
// deliberately not supported by this client.
const PaperBaseURL = "https://paper-api.alpaca.markets"

// Client implements the broker contract against Alpaca
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
	apiSecret  string
}

// compile-time check that Client satisfies execution.Broker
var _ execution.Broker = (*Client)(nil)

// NewClient creates a new Alpaca paper trading client
func NewClient(httpClient *httputil.Client, log *logger.Logger, apiKey, apiSecret, baseURL string) *Client {
	if baseURL == "" {
		baseURL = PaperBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
	}
}

type accountResponse struct {
	PortfolioValue string `json:"portfolio_value"`
	Cash           string `json:"cash"`
	BuyingPower    string `json:"buying_power"`
	Currency       string `json:"currency"`
}

// GetAccount retrieves the paper account state
func (c *Client) GetAccount(ctx context.Context) (*execution.Account, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/account", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create account request: %w", err)
	}
	c.authenticate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("account request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from account endpoint", resp.StatusCode)
	}

	var parsed accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode account response: %w", err)
	}

	account := &execution.Account{Currency: parsed.Currency}
	if account.PortfolioValue, err = strconv.ParseFloat(parsed.PortfolioValue, 64); err != nil {
		return nil, fmt.Errorf("bad portfolio_value %q: %w", parsed.PortfolioValue, err)
	}
	if account.Cash, err = strconv.ParseFloat(parsed.Cash, 64); err != nil {
		return nil, fmt.Errorf("bad cash %q: %w", parsed.Cash, err)
	}
	if account.BuyingPower, err = strconv.ParseFloat(parsed.BuyingPower, 64); err != nil {
		return nil, fmt.Errorf("bad buying_power %q: %w", parsed.BuyingPower, err)
	}

	return account, nil
}

type bracketLeg struct {
	LimitPrice string `json:"limit_price,omitempty"`
	StopPrice  string `json:"stop_price,omitempty"`
}

type orderPayload struct {
	Symbol      string      `json:"symbol"`
	Qty         string      `json:"qty"`
	Side        string      `json:"side"`
	Type        string      `json:"type"`
	TimeInForce string      `json:"time_in_force"`
	OrderClass  string      `json:"order_class"`
	TakeProfit  *bracketLeg `json:"take_profit,omitempty"`
	StopLoss    *bracketLeg `json:"stop_loss,omitempty"`
}

type orderResponse struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// SubmitOrder places a market bracket order. Dry-run requests are
// refused outright; the flag must be honored upstream.
func (c *Client) SubmitOrder(ctx context.Context, orderReq *contracts.OrderRequest) (*contracts.OrderResult, error) {
	if orderReq.DryRun {
		return nil, fmt.Errorf("dry-run order for %s must not be submitted", orderReq.Ticker)
	}

	payload := orderPayload{
		Symbol:      orderReq.Ticker,
		Qty:         strconv.Itoa(orderReq.Quantity),
		Side:        strings.ToLower(string(orderReq.Side)),
		Type:        "market",
		TimeInForce: "gtc",
		OrderClass:  "bracket",
		TakeProfit:  &bracketLeg{LimitPrice: formatPrice(orderReq.TakeProfitPrice)},
		StopLoss:    &bracketLeg{StopPrice: formatPrice(orderReq.StopLossPrice)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/orders", strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authenticate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("order rejected with status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":   orderReq.Ticker,
		"order_id": parsed.ID,
		"status":   parsed.Status,
	}).Info("Bracket order placed")

	return &contracts.OrderResult{
		OrderID:     parsed.ID,
		Status:      contracts.OrderStatusSubmitted,
		SubmittedAt: parsed.SubmittedAt,
	}, nil
}

func (c *Client) authenticate(req *http.Request) {
	req.Header.Set("APCA-API-KEY-ID", c.apiKey)
	req.Header.Set("APCA-API-SECRET-KEY", c.apiSecret)
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
