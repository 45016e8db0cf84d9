package engine

import (
	"context"
	"math"
	"time"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// MarketSignal is what the market data collaborator returns per ticker
type MarketSignal struct {
	PercentChange float64
	Price         float64
}

// SentimentSignal is what the sentiment collaborator returns per ticker
type SentimentSignal struct {
	Score         float64 // compound score in [-1, 1]
	HeadlineCount int
}

// MarketDataSource supplies daily price signals. A ticker may be
// omitted from the result entirely on failure.
type MarketDataSource interface {
	GetSignals(ctx context.Context, tickers []string) (map[string]MarketSignal, error)
}

// SentimentSource supplies news sentiment signals, same omission policy
type SentimentSource interface {
	GetSentiment(ctx context.Context, tickers []string) (map[string]SentimentSignal, error)
}

// Assembler joins collaborator signals into one batch per run.
// Missing or non-finite values become neutral (0.0) substitutes with
// a recorded gap warning, so one flaky source never removes an asset
// from the comparison.
type Assembler struct {
	market    MarketDataSource
	sentiment SentimentSource
	logger    *logger.Logger
}

// NewAssembler creates a new signal assembler
func NewAssembler(market MarketDataSource, sentiment SentimentSource, log *logger.Logger) *Assembler {
	return &Assembler{
		market:    market,
		sentiment: sentiment,
		logger:    log,
	}
}

// Assemble builds the signal batch for the given tickers. Collaborator
// errors surface as gap warnings for every requested ticker, not as a
// failed run; the batch always contains one entry per input ticker.
func (a *Assembler) Assemble(ctx context.Context, tickers []string) (*contracts.SignalBatch, error) {
	batch := &contracts.SignalBatch{
		Date:    time.Now(),
		Signals: make([]contracts.AssetSignal, 0, len(tickers)),
	}

	marketSignals, err := a.market.GetSignals(ctx, tickers)
	if err != nil {
		a.logger.WithError(err).Warn("Market data source failed, substituting neutral signals")
		marketSignals = map[string]MarketSignal{}
	}

	sentimentSignals, err := a.sentiment.GetSentiment(ctx, tickers)
	if err != nil {
		a.logger.WithError(err).Warn("Sentiment source failed, substituting neutral signals")
		sentimentSignals = map[string]SentimentSignal{}
	}

	for _, ticker := range tickers {
		signal := contracts.AssetSignal{
			Ticker:      ticker,
			CollectedAt: batch.Date,
		}

		if m, ok := marketSignals[ticker]; ok {
			signal.PercentChange = coerce(m.PercentChange, ticker, "percent_change", "market", batch)
			signal.Price = coerce(m.Price, ticker, "price", "market", batch)
		} else {
			batch.Warnings = append(batch.Warnings, contracts.DataGapWarning{
				Ticker: ticker, Field: "percent_change", Source: "market",
			})
		}

		if s, ok := sentimentSignals[ticker]; ok {
			signal.SentimentScore = coerce(s.Score, ticker, "sentiment_score", "sentiment", batch)
			signal.HeadlineCount = s.HeadlineCount
		} else {
			batch.Warnings = append(batch.Warnings, contracts.DataGapWarning{
				Ticker: ticker, Field: "sentiment_score", Source: "sentiment",
			})
		}

		batch.Signals = append(batch.Signals, signal)
	}

	if len(batch.Warnings) > 0 {
		a.logger.WithFields(map[string]interface{}{
			"tickers": len(tickers),
			"gaps":    len(batch.Warnings),
		}).Warn("Signal batch assembled with data gaps")
	}

	return batch, nil
}

// coerce replaces NaN and infinities with the neutral value before
// the math stages see them
func coerce(v float64, ticker, field, source string, batch *contracts.SignalBatch) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		batch.Warnings = append(batch.Warnings, contracts.DataGapWarning{
			Ticker: ticker, Field: field, Source: source,
		})
		return 0.0
	}
	return v
}
