package contracts

import "time"

// AssetSignal carries the raw per-ticker inputs for one ranking run.
// Produced by the signal-assembly boundary, never mutated afterward.
type AssetSignal struct {
	Ticker         string    `json:"ticker"`
	PercentChange  float64   `json:"percent_change"`  // daily price move, signed
	SentimentScore float64   `json:"sentiment_score"` // compound score in [-1, 1]
	HeadlineCount  int       `json:"headline_count"`
	Price          float64   `json:"price"` // last trade price, entry reference
	CollectedAt    time.Time `json:"collected_at"`
}

// SignalBatch groups the signals of a single ranking run along with
// any data gaps recorded while assembling them.
type SignalBatch struct {
	Date     time.Time        `json:"date"`
	Signals  []AssetSignal    `json:"signals"`
	Warnings []DataGapWarning `json:"warnings,omitempty"`
}

// Count returns the number of assets in the batch
func (b *SignalBatch) Count() int {
	return len(b.Signals)
}

// Tickers returns the ticker symbols in batch order
func (b *SignalBatch) Tickers() []string {
	tickers := make([]string, len(b.Signals))
	for i, s := range b.Signals {
		tickers[i] = s.Ticker
	}
	return tickers
}

// DataGapWarning records a missing collaborator signal. The asset
// proceeds with a neutral substituted value; the warning is metadata,
// not a failure of the run.
type DataGapWarning struct {
	Ticker string `json:"ticker"`
	Field  string `json:"field"`  // "percent_change", "sentiment_score", "price"
	Source string `json:"source"` // which collaborator omitted the value
}
