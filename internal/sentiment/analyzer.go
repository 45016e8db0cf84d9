// Package sentiment scores news headlines with a financial keyword
// lexicon. Each headline yields a compound score in [-1, 1]; per
// ticker the scores are averaged into one value plus a headline count.
package sentiment

import (
	"math"
	"strings"
)

// keyword hit weight and boost cap per headline
const (
	keywordWeight = 0.1
	boostCap      = 0.2
)

// minHeadlineLength filters out fragments like tickers or timestamps
const minHeadlineLength = 10

// fullConfidenceCount is the headline count at which the aggregate
// score is trusted without damping
const fullConfidenceCount = 10

var positiveWords = []string{
	"bullish", "gains", "surge", "rally", "outperform", "beat", "exceed",
	"strong", "growth", "profit", "revenue", "upgrade", "buy", "positive",
	"momentum", "breakthrough", "expansion", "acquisition", "dividend",
	"innovation", "partnership", "launch", "success", "record", "milestone",
}

var negativeWords = []string{
	"bearish", "losses", "decline", "crash", "underperform", "miss", "below",
	"weak", "loss", "deficit", "downgrade", "sell", "negative", "concern",
	"lawsuit", "investigation", "bankruptcy", "recession", "volatility",
	"warning", "risk", "threat", "challenge", "issue", "problem", "delay",
}

// Analyzer scores headlines against the financial lexicon
type Analyzer struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// Result aggregates the sentiment of one ticker's headlines
type Result struct {
	Score         float64 `json:"score"` // average compound, [-1, 1]
	HeadlineCount int     `json:"headline_count"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	NeutralCount  int     `json:"neutral_count"`
}

// NewAnalyzer creates a lexicon analyzer
func NewAnalyzer() *Analyzer {
	a := &Analyzer{
		positive: make(map[string]struct{}, len(positiveWords)),
		negative: make(map[string]struct{}, len(negativeWords)),
	}
	for _, w := range positiveWords {
		a.positive[w] = struct{}{}
	}
	for _, w := range negativeWords {
		a.negative[w] = struct{}{}
	}
	return a
}

// ScoreHeadline returns the compound score for one headline. The net
// keyword count drives the score, capped so one verbose headline
// cannot dominate the average.
func (a *Analyzer) ScoreHeadline(headline string) float64 {
	var posCount, negCount int
	for _, token := range tokenize(headline) {
		if _, ok := a.positive[token]; ok {
			posCount++
		}
		if _, ok := a.negative[token]; ok {
			negCount++
		}
	}

	net := float64(posCount-negCount) * keywordWeight
	return math.Max(-boostCap, math.Min(boostCap, net)) / boostCap
}

// AnalyzeHeadlines aggregates the lexicon scores of all usable
// headlines for one ticker. Too-short headlines are skipped; no
// usable headlines yields a zero-count neutral result.
func (a *Analyzer) AnalyzeHeadlines(headlines []string) Result {
	var result Result
	var sum float64

	for _, h := range headlines {
		if len(strings.TrimSpace(h)) < minHeadlineLength {
			continue
		}
		score := a.ScoreHeadline(h)
		sum += score
		result.HeadlineCount++

		switch {
		case score > 0.05:
			result.PositiveCount++
		case score < -0.05:
			result.NegativeCount++
		default:
			result.NeutralCount++
		}
	}

	if result.HeadlineCount > 0 {
		// thin coverage dampens the score toward neutral
		confidence := math.Min(1.0, float64(result.HeadlineCount)/fullConfidenceCount)
		result.Score = sum / float64(result.HeadlineCount) * confidence
	}
	return result
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}
