package contracts

import "time"

// RankedAsset is one row of a ranking run result. Rank is 1-based,
// assigned after sorting descending by composite score with ties
// broken by ticker ascending.
type RankedAsset struct {
	Ticker         string  `json:"ticker"`
	CompositeScore float64 `json:"composite_score"` // [0, 100]
	TechnicalScore float64 `json:"technical_score"` // normalized price score, [0, 100]
	SentimentScore float64 `json:"sentiment_score"` // normalized sentiment score, [0, 100]
	HeadlineCount  int     `json:"headline_count"`
	Price          float64 `json:"price"`
	Rank           int     `json:"rank"`
}

// RankingSnapshot is what gets persisted after a run
type RankingSnapshot struct {
	RunAt  time.Time     `json:"run_at"`
	Assets []RankedAsset `json:"assets"`
}

// Recommendation labels, ordered from strongest to weakest
const (
	LabelStrongBuy = "Strong Buy"
	LabelBuy       = "Buy"
	LabelHold      = "Hold"
	LabelWeakHold  = "Weak Hold"
	LabelAvoid     = "Avoid"
)

// TopPick is a RankedAsset with its recommendation tier and
// data-volume qualification attached.
type TopPick struct {
	RankedAsset
	Label     string `json:"label"`
	Qualifies bool   `json:"qualifies"` // headline_count >= configured minimum
}

// IsBuySignal checks if the label is an actionable buy tier
func (p *TopPick) IsBuySignal() bool {
	return p.Label == LabelStrongBuy || p.Label == LabelBuy
}
