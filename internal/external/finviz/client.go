// Package finviz scrapes news headlines from finviz.com quote pages.
// The site is a plain HTML page with a #news-table element; requests
// go through a conservative local rate limiter on top of whatever
// the shared HTTP client enforces.
package finviz

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/alphaframe/alphaframe/pkg/httputil"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// maxHeadlinesPerTicker caps how much news feeds into scoring
const maxHeadlinesPerTicker = 20

// minHeadlineLength filters out link fragments
const minHeadlineLength = 10

// Client scrapes headlines from finviz quote pages
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	limiter    *rate.Limiter
	baseURL    string
}

// NewClient creates a new finviz client. One request per second
// keeps the scraper polite.
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		baseURL:    "https://finviz.com",
	}
}

// WithBaseURL overrides the host, used in tests
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// WithLimiter overrides the request limiter
func (c *Client) WithLimiter(limiter *rate.Limiter) *Client {
	c.limiter = limiter
	return c
}

// GetHeadlines scrapes the news table for one ticker
func (c *Client) GetHeadlines(ctx context.Context, ticker string) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/quote.ashx?t=%s", c.baseURL, strings.ToUpper(ticker))

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("headline request failed for %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, ticker)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page for %s: %w", ticker, err)
	}

	headlines := parseNewsTable(doc)

	c.logger.WithFields(map[string]interface{}{
		"ticker":    ticker,
		"headlines": len(headlines),
	}).Debug("Fetched headlines")

	return headlines, nil
}

// GetHeadlinesBatch scrapes headlines for multiple tickers. A ticker
// that fails is omitted rather than failing the batch.
func (c *Client) GetHeadlinesBatch(ctx context.Context, tickers []string) (map[string][]string, error) {
	result := make(map[string][]string, len(tickers))

	for _, ticker := range tickers {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		headlines, err := c.GetHeadlines(ctx, ticker)
		if err != nil {
			c.logger.WithError(err).WithField("ticker", ticker).Warn("Headline fetch failed, ticker omitted")
			continue
		}
		result[ticker] = headlines
	}

	return result, nil
}

func parseNewsTable(doc *goquery.Document) []string {
	headlines := make([]string, 0, maxHeadlinesPerTicker)

	doc.Find("#news-table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		text := strings.TrimSpace(row.Find("a").First().Text())
		if len(text) > minHeadlineLength {
			headlines = append(headlines, text)
		}
		return len(headlines) < maxHeadlinesPerTicker
	})

	return headlines
}
