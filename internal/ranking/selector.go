package ranking

import (
	"fmt"

	"github.com/alphaframe/alphaframe/internal/contracts"
)

// LabelBand maps a minimum composite score to a recommendation label
type LabelBand struct {
	Threshold float64
	Label     string
}

// DefaultLabelBands returns the standard recommendation tiers.
// Bands are scanned from the highest threshold down; scores below
// the lowest band fall through to "Avoid".
func DefaultLabelBands() []LabelBand {
	return []LabelBand{
		{Threshold: 80, Label: contracts.LabelStrongBuy},
		{Threshold: 65, Label: contracts.LabelBuy},
		{Threshold: 50, Label: contracts.LabelHold},
		{Threshold: 35, Label: contracts.LabelWeakHold},
	}
}

// Selector extracts the highest-scoring, data-qualified assets from
// a ranked list and labels every asset it inspects.
type Selector struct {
	topN         int
	minHeadlines int
	bands        []LabelBand
}

// NewSelector validates and builds a selector. The band table must be
// strictly descending by threshold so the first match wins; an
// unordered table is a configuration error, not something to repair
// silently.
func NewSelector(topN, minHeadlines int, bands []LabelBand) (*Selector, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("top_n must be positive, got %d", topN)
	}
	if minHeadlines < 0 {
		return nil, fmt.Errorf("min_headlines must be non-negative, got %d", minHeadlines)
	}
	if len(bands) == 0 {
		bands = DefaultLabelBands()
	}

	for i := 1; i < len(bands); i++ {
		if bands[i].Threshold >= bands[i-1].Threshold {
			return nil, fmt.Errorf("label bands must be strictly descending, got %.1f after %.1f",
				bands[i].Threshold, bands[i-1].Threshold)
		}
	}

	return &Selector{
		topN:         topN,
		minHeadlines: minHeadlines,
		bands:        bands,
	}, nil
}

// Label assigns the recommendation tier for a composite score
func (s *Selector) Label(score float64) string {
	for _, band := range s.bands {
		if score >= band.Threshold {
			return band.Label
		}
	}
	return contracts.LabelAvoid
}

// SelectTopPicks returns at most topN qualifying picks in rank order.
// Assets with too few headlines are marked non-qualifying rather than
// dropped silently; LabelAll keeps them visible for audit.
func (s *Selector) SelectTopPicks(ranked []contracts.RankedAsset) []contracts.TopPick {
	picks := make([]contracts.TopPick, 0, s.topN)
	for _, asset := range ranked {
		if asset.HeadlineCount < s.minHeadlines {
			continue
		}
		picks = append(picks, contracts.TopPick{
			RankedAsset: asset,
			Label:       s.Label(asset.CompositeScore),
			Qualifies:   true,
		})
		if len(picks) == s.topN {
			break
		}
	}
	return picks
}

// LabelAll labels every ranked asset, including non-qualifying ones
func (s *Selector) LabelAll(ranked []contracts.RankedAsset) []contracts.TopPick {
	picks := make([]contracts.TopPick, len(ranked))
	for i, asset := range ranked {
		picks[i] = contracts.TopPick{
			RankedAsset: asset,
			Label:       s.Label(asset.CompositeScore),
			Qualifies:   asset.HeadlineCount >= s.minHeadlines,
		}
	}
	return picks
}
