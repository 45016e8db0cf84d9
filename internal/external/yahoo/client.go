// Package yahoo fetches daily quotes from the Yahoo Finance chart
// API. Only the fields the ranking pipeline needs are decoded.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/alphaframe/alphaframe/pkg/httputil"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// Client handles communication with the Yahoo Finance chart API
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// Quote is the per-ticker daily snapshot
type Quote struct {
	Ticker        string
	Price         float64
	PreviousClose float64
	PercentChange float64
	Volume        int64
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    "https://query1.finance.yahoo.com",
	}
}

// WithBaseURL overrides the API host, used in tests
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// Bar is one daily close from the historical chart
type Bar struct {
	Date  time.Time
	Close float64
}

// chartResponse mirrors the chart API payload
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string  `json:"symbol"`
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				PreviousClose       float64 `json:"chartPreviousClose"`
				RegularMarketVolume int64   `json:"regularMarketVolume"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetQuote fetches the latest quote for one ticker
func (c *Client) GetQuote(ctx context.Context, ticker string) (*Quote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=2d", c.baseURL, ticker)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("quote request failed for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, ticker)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode quote for %s: %w", ticker, err)
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", ticker, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", ticker)
	}

	meta := parsed.Chart.Result[0].Meta
	quote := &Quote{
		Ticker:        ticker,
		Price:         meta.RegularMarketPrice,
		PreviousClose: meta.PreviousClose,
		Volume:        meta.RegularMarketVolume,
	}
	if meta.PreviousClose > 0 {
		quote.PercentChange = (meta.RegularMarketPrice - meta.PreviousClose) / meta.PreviousClose * 100
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker":         ticker,
		"price":          quote.Price,
		"percent_change": quote.PercentChange,
	}).Debug("Fetched quote")

	return quote, nil
}

// GetDailyCloses fetches the daily closing prices for one ticker over
// a date range. Days Yahoo reports with a null close (halts, partial
// sessions) are skipped.
func (c *Client) GetDailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL, ticker, start.Unix(), end.Unix())

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("history request failed for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, ticker)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode history for %s: %w", ticker, err)
	}

	if parsed.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", ticker, parsed.Chart.Error.Description)
	}
	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", ticker)
	}

	result := parsed.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote series for %s", ticker)
	}

	closes := result.Indicators.Quote[0].Close
	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		bars = append(bars, Bar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"bars":   len(bars),
	}).Debug("Fetched price history")

	return bars, nil
}

// GetQuotes fetches quotes for multiple tickers. A ticker that fails
// is omitted from the result rather than failing the whole batch; the
// assembly layer substitutes neutral values for omitted tickers.
func (c *Client) GetQuotes(ctx context.Context, tickers []string) (map[string]*Quote, error) {
	quotes := make(map[string]*Quote, len(tickers))

	for _, ticker := range tickers {
		select {
		case <-ctx.Done():
			return quotes, ctx.Err()
		default:
		}

		quote, err := c.GetQuote(ctx, ticker)
		if err != nil {
			c.logger.WithError(err).WithField("ticker", ticker).Warn("Quote fetch failed, ticker omitted")
			continue
		}
		quotes[ticker] = quote
	}

	return quotes, nil
}
