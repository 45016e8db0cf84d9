package ranking

import "fmt"

// weightTolerance is the allowed floating point error when checking
// that weights sum to 1.0
const weightTolerance = 1e-6

// WeightConfig defines how normalized price and sentiment scores are
// blended into a composite. Weights must sum to 1.0; validation
// happens once at construction, never per call.
type WeightConfig struct {
	Price     float64
	Sentiment float64
}

// NewWeightConfig validates and builds a weight configuration.
// Invalid weights are rejected here rather than silently renormalized.
func NewWeightConfig(price, sentiment float64) (WeightConfig, error) {
	w := WeightConfig{Price: price, Sentiment: sentiment}
	if err := w.Validate(); err != nil {
		return WeightConfig{}, err
	}
	return w, nil
}

// Validate checks weight bounds and sum
func (w WeightConfig) Validate() error {
	if w.Price < 0 || w.Price > 1 || w.Sentiment < 0 || w.Sentiment > 1 {
		return fmt.Errorf("weights must lie in [0, 1]: price=%.4f sentiment=%.4f", w.Price, w.Sentiment)
	}
	sum := w.Price + w.Sentiment
	if sum < 1.0-weightTolerance || sum > 1.0+weightTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %.6f", sum)
	}
	return nil
}

// DefaultWeightConfig returns the standard 60/40 price/sentiment blend
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		Price:     0.60,
		Sentiment: 0.40,
	}
}

// Composite blends two normalized scores. Given inputs in [0, 100]
// and valid weights the result stays in [0, 100] by convexity.
func (w WeightConfig) Composite(priceScore, sentimentScore float64) float64 {
	return w.Price*priceScore + w.Sentiment*sentimentScore
}
