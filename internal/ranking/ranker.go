package ranking

import (
	"sort"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// Ranker turns a batch of raw asset signals into a deterministic
// ranked list. Signals are normalized cross-sectionally, so an
// asset's score reflects how it compares to the rest of the batch.
type Ranker struct {
	weights WeightConfig
	method  NormalizationMethod
	logger  *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(weights WeightConfig, method NormalizationMethod, log *logger.Logger) *Ranker {
	return &Ranker{
		weights: weights,
		method:  method,
		logger:  log,
	}
}

// Rank normalizes each signal column across the batch, blends the
// composite scores, and sorts descending. Ties break by ticker
// ascending so identical inputs always produce identical output.
// An empty batch yields an empty result, not an error.
func (r *Ranker) Rank(signals []contracts.AssetSignal) []contracts.RankedAsset {
	if len(signals) == 0 {
		return []contracts.RankedAsset{}
	}

	priceRaw := make([]float64, len(signals))
	sentimentRaw := make([]float64, len(signals))
	for i, s := range signals {
		priceRaw[i] = s.PercentChange
		sentimentRaw[i] = s.SentimentScore
	}

	priceScores := Normalize(priceRaw, r.method)
	sentimentScores := Normalize(sentimentRaw, r.method)

	ranked := make([]contracts.RankedAsset, len(signals))
	for i, s := range signals {
		ranked[i] = contracts.RankedAsset{
			Ticker:         s.Ticker,
			TechnicalScore: priceScores[i],
			SentimentScore: sentimentScores[i],
			CompositeScore: r.weights.Composite(priceScores[i], sentimentScores[i]),
			HeadlineCount:  s.HeadlineCount,
			Price:          s.Price,
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CompositeScore != ranked[j].CompositeScore {
			return ranked[i].CompositeScore > ranked[j].CompositeScore
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	r.logger.WithFields(map[string]interface{}{
		"total_assets": len(ranked),
		"top_ticker":   ranked[0].Ticker,
		"top_score":    ranked[0].CompositeScore,
	}).Info("Ranking completed")

	return ranked
}
