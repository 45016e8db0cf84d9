package engine

import (
	"context"

	"github.com/alphaframe/alphaframe/internal/external/finviz"
	"github.com/alphaframe/alphaframe/internal/external/yahoo"
	"github.com/alphaframe/alphaframe/internal/sentiment"
	"github.com/alphaframe/alphaframe/pkg/redis"
)

// YahooMarketSource adapts the Yahoo quote client to the market data
// contract, with an optional Redis cache in front of the API.
type YahooMarketSource struct {
	client *yahoo.Client
	cache  *redis.Cache
}

// NewYahooMarketSource creates the adapter. cache may be nil.
func NewYahooMarketSource(client *yahoo.Client, cache *redis.Cache) *YahooMarketSource {
	return &YahooMarketSource{client: client, cache: cache}
}

// GetSignals fetches quotes and maps them to market signals. Failed
// tickers are omitted per the collaborator contract.
func (s *YahooMarketSource) GetSignals(ctx context.Context, tickers []string) (map[string]MarketSignal, error) {
	signals := make(map[string]MarketSignal, len(tickers))

	for _, ticker := range tickers {
		quote, err := s.fetchQuote(ctx, ticker)
		if err != nil {
			continue
		}
		signals[ticker] = MarketSignal{
			PercentChange: quote.PercentChange,
			Price:         quote.Price,
		}
	}

	return signals, nil
}

func (s *YahooMarketSource) fetchQuote(ctx context.Context, ticker string) (*yahoo.Quote, error) {
	if s.cache == nil {
		return s.client.GetQuote(ctx, ticker)
	}

	var quote yahoo.Quote
	err := s.cache.GetOrSet(ctx, redis.QuoteKey(ticker), &quote, redis.TTLShort, func() (interface{}, error) {
		q, err := s.client.GetQuote(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return *q, nil
	})
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// FinvizSentimentSource scrapes headlines and scores them with the
// lexicon analyzer. Scored results are cached per ticker so repeated
// runs within the TTL skip the scrape entirely.
type FinvizSentimentSource struct {
	client   *finviz.Client
	analyzer *sentiment.Analyzer
	cache    *redis.Cache
}

// NewFinvizSentimentSource creates the adapter. cache may be nil.
func NewFinvizSentimentSource(client *finviz.Client, analyzer *sentiment.Analyzer, cache *redis.Cache) *FinvizSentimentSource {
	return &FinvizSentimentSource{client: client, analyzer: analyzer, cache: cache}
}

// GetSentiment fetches and scores headlines per ticker, omitting
// tickers whose scrape failed.
func (s *FinvizSentimentSource) GetSentiment(ctx context.Context, tickers []string) (map[string]SentimentSignal, error) {
	signals := make(map[string]SentimentSignal, len(tickers))

	for _, ticker := range tickers {
		result, err := s.scoreTicker(ctx, ticker)
		if err != nil {
			continue
		}
		signals[ticker] = SentimentSignal{
			Score:         result.Score,
			HeadlineCount: result.HeadlineCount,
		}
	}

	return signals, nil
}

func (s *FinvizSentimentSource) scoreTicker(ctx context.Context, ticker string) (*sentiment.Result, error) {
	fetch := func() (interface{}, error) {
		headlines, err := s.client.GetHeadlines(ctx, ticker)
		if err != nil {
			return nil, err
		}
		return s.analyzer.AnalyzeHeadlines(headlines), nil
	}

	var result sentiment.Result
	if s.cache == nil {
		v, err := fetch()
		if err != nil {
			return nil, err
		}
		result = v.(sentiment.Result)
		return &result, nil
	}

	if err := s.cache.GetOrSet(ctx, redis.SentimentKey(ticker), &result, redis.TTLMedium, fetch); err != nil {
		return nil, err
	}
	return &result, nil
}
