package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreHeadline(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name     string
		headline string
		want     float64
	}{
		{"single positive", "Apple posts strong quarterly results", 0.5},
		{"capped positive", "Record revenue growth beats estimates", 1.0},
		{"single negative", "Analyst downgrade hits shares", -0.5},
		{"mixed cancels out", "Strong quarter but lawsuit looms", 0.0},
		{"no keywords", "Company schedules annual meeting", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, a.ScoreHeadline(tt.headline), 1e-9)
		})
	}
}

func TestScoreHeadlineCaseInsensitive(t *testing.T) {
	a := NewAnalyzer()
	assert.Equal(t, a.ScoreHeadline("BULLISH rally continues"), a.ScoreHeadline("bullish rally continues"))
}

func TestAnalyzeHeadlines(t *testing.T) {
	a := NewAnalyzer()

	result := a.AnalyzeHeadlines([]string{
		"Record revenue growth beats estimates",
		"Analyst downgrade hits shares",
		"Company schedules annual meeting",
	})

	assert.Equal(t, 3, result.HeadlineCount)
	assert.Equal(t, 1, result.PositiveCount)
	assert.Equal(t, 1, result.NegativeCount)
	assert.Equal(t, 1, result.NeutralCount)
	// 3 of 10 headlines, so the average is damped to 30% confidence
	assert.InDelta(t, (1.0-0.5+0.0)/3.0*0.3, result.Score, 1e-9)
}

func TestAnalyzeHeadlinesFullConfidence(t *testing.T) {
	a := NewAnalyzer()

	headlines := make([]string, 10)
	for i := range headlines {
		headlines[i] = "Shares rally on strong growth outlook"
	}
	result := a.AnalyzeHeadlines(headlines)

	assert.Equal(t, 10, result.HeadlineCount)
	assert.InDelta(t, 1.0, result.Score, 1e-9, "ten headlines carry full confidence")
}

func TestAnalyzeHeadlinesSkipsFragments(t *testing.T) {
	a := NewAnalyzer()

	result := a.AnalyzeHeadlines([]string{"AAPL", "  ", "up 2%"})

	assert.Equal(t, 0, result.HeadlineCount)
	assert.Equal(t, 0.0, result.Score)
}

func TestAnalyzeHeadlinesEmpty(t *testing.T) {
	a := NewAnalyzer()
	result := a.AnalyzeHeadlines(nil)

	assert.Equal(t, 0, result.HeadlineCount)
	assert.Equal(t, 0.0, result.Score)
}

func TestScoreStaysInRange(t *testing.T) {
	a := NewAnalyzer()

	extreme := "bullish gains surge rally outperform beat exceed strong growth profit"
	s := a.ScoreHeadline(extreme)
	assert.Equal(t, 1.0, s, "score is capped at 1.0")

	extremeNeg := "bearish losses decline crash underperform miss weak loss deficit downgrade"
	assert.Equal(t, -1.0, a.ScoreHeadline(extremeNeg))
}
