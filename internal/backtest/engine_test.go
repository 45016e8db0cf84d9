package backtest

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/internal/external/yahoo"
	"github.com/alphaframe/alphaframe/internal/ranking"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// stubPrices serves canned daily bars
type stubPrices struct {
	bars map[string][]yahoo.Bar
}

func (s *stubPrices) GetDailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]yahoo.Bar, error) {
	bars, ok := s.bars[ticker]
	if !ok {
		return nil, fmt.Errorf("no history for %s", ticker)
	}
	return bars, nil
}

// weekdayBars generates one bar per weekday, priced by day index
func weekdayBars(start time.Time, days int, price func(i int) float64) []yahoo.Bar {
	bars := make([]yahoo.Bar, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}
		bars = append(bars, yahoo.Bar{Date: date, Close: price(i)})
	}
	return bars
}

func testRanker(t *testing.T) *ranking.Ranker {
	t.Helper()
	return ranking.NewRanker(ranking.DefaultWeightConfig(), ranking.MethodMinMax, logger.NewWriter(io.Discard))
}

// The simulated period: June 2026, starting on a Monday
var (
	btStart   = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	btEnd     = time.Date(2026, 6, 26, 0, 0, 0, 0, time.UTC)
	btHistory = btStart.AddDate(0, 0, -40)
)

func flatConfig() Config {
	cfg := DefaultConfig()
	cfg.StartDate = btStart
	cfg.EndDate = btEnd
	cfg.TopN = 1
	cfg.MaxPositionPct = 1.0
	cfg.TransactionCostPct = 0
	return cfg
}

func TestBacktestFlatMarket(t *testing.T) {
	prices := &stubPrices{bars: map[string][]yahoo.Bar{
		"AAPL": weekdayBars(btHistory, 70, func(i int) float64 { return 100.0 }),
	}}
	e := NewEngine(prices, testRanker(t), nil, logger.NewWriter(io.Discard))

	result, err := e.Run(context.Background(), []string{"AAPL"}, flatConfig())
	require.NoError(t, err)

	assert.Equal(t, 20, result.TradingDays)
	assert.GreaterOrEqual(t, result.RebalanceCount, 2)
	assert.Equal(t, 1, result.TotalTrades, "initial buy, then already at target")
	assert.InDelta(t, 100_000.0, result.FinalEquity, 1e-9)
	assert.InDelta(t, 0.0, result.TotalReturn, 1e-9)
	assert.InDelta(t, 0.0, result.Volatility, 1e-9)
	assert.InDelta(t, 0.0, result.MaxDrawdown, 1e-9)
	assert.Len(t, result.EquityCurve, 20)
}

func TestBacktestRisingMarketPicksMomentumLeader(t *testing.T) {
	prices := &stubPrices{bars: map[string][]yahoo.Bar{
		"UP":   weekdayBars(btHistory, 70, func(i int) float64 { return 100.0 + float64(i) }),
		"FLAT": weekdayBars(btHistory, 70, func(i int) float64 { return 50.0 }),
	}}
	e := NewEngine(prices, testRanker(t), nil, logger.NewWriter(io.Discard))

	result, err := e.Run(context.Background(), []string{"UP", "FLAT"}, flatConfig())
	require.NoError(t, err)

	assert.Greater(t, result.FinalEquity, result.InitialCapital)
	assert.Greater(t, result.TotalReturn, 0.0)
	assert.InDelta(t, 0.0, result.MaxDrawdown, 1e-9, "monotonic equity has no drawdown")

	require.NotEmpty(t, result.Trades)
	for _, trade := range result.Trades {
		assert.Equal(t, "UP", trade.Ticker, "only the momentum leader is held")
	}
}

type stubSnapshots struct {
	ranked []contracts.RankedAsset
}

func (s *stubSnapshots) GetSnapshot(ctx context.Context, date time.Time, limit int) ([]contracts.RankedAsset, error) {
	if limit > len(s.ranked) {
		limit = len(s.ranked)
	}
	return s.ranked[:limit], nil
}

func TestBacktestOverPersistedSnapshots(t *testing.T) {
	prices := &stubPrices{bars: map[string][]yahoo.Bar{
		"MSFT": weekdayBars(btHistory, 70, func(i int) float64 { return 200.0 }),
		"AAPL": weekdayBars(btHistory, 70, func(i int) float64 { return 100.0 }),
	}}
	snapshots := &stubSnapshots{ranked: []contracts.RankedAsset{
		{Ticker: "MSFT", CompositeScore: 90, Rank: 1},
		{Ticker: "AAPL", CompositeScore: 40, Rank: 2},
	}}
	e := NewEngine(prices, testRanker(t), snapshots, logger.NewWriter(io.Discard))

	result, err := e.Run(context.Background(), []string{"MSFT", "AAPL"}, flatConfig())
	require.NoError(t, err)

	require.NotEmpty(t, result.Trades)
	for _, trade := range result.Trades {
		assert.Equal(t, "MSFT", trade.Ticker, "picks come from the persisted ranking")
	}
}

func TestBacktestMissingTickerIsDropped(t *testing.T) {
	prices := &stubPrices{bars: map[string][]yahoo.Bar{
		"AAPL": weekdayBars(btHistory, 70, func(i int) float64 { return 100.0 }),
	}}
	e := NewEngine(prices, testRanker(t), nil, logger.NewWriter(io.Discard))

	result, err := e.Run(context.Background(), []string{"AAPL", "GHOST"}, flatConfig())
	require.NoError(t, err)
	for _, trade := range result.Trades {
		assert.Equal(t, "AAPL", trade.Ticker)
	}
}

func TestBacktestNoHistoryAtAll(t *testing.T) {
	e := NewEngine(&stubPrices{bars: map[string][]yahoo.Bar{}}, testRanker(t), nil, logger.NewWriter(io.Discard))

	_, err := e.Run(context.Background(), []string{"AAPL"}, flatConfig())
	assert.Error(t, err)
}

func TestBacktestConfigValidation(t *testing.T) {
	base := flatConfig()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"end before start", func(c *Config) { c.EndDate = c.StartDate.AddDate(0, 0, -1) }},
		{"zero capital", func(c *Config) { c.InitialCapital = 0 }},
		{"zero rebalance days", func(c *Config) { c.RebalanceDays = 0 }},
		{"zero top n", func(c *Config) { c.TopN = 0 }},
		{"position cap above one", func(c *Config) { c.MaxPositionPct = 1.5 }},
		{"negative cost", func(c *Config) { c.TransactionCostPct = -0.001 }},
		{"zero lookback", func(c *Config) { c.LookbackDays = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMaxDrawdown(t *testing.T) {
	curve := []EquityPoint{
		{Equity: 100_000},
		{Equity: 120_000},
		{Equity: 90_000},
		{Equity: 110_000},
	}
	assert.InDelta(t, 0.25, maxDrawdown(curve), 1e-9)
	assert.Equal(t, 0.0, maxDrawdown(nil))
}

func TestPriceBookChangeOver(t *testing.T) {
	prices := &stubPrices{bars: map[string][]yahoo.Bar{
		"AAPL": weekdayBars(btHistory, 70, func(i int) float64 { return 100.0 + float64(i) }),
	}}
	book, err := BuildPriceBook(context.Background(), prices, []string{"AAPL"}, btHistory, btEnd, logger.NewWriter(io.Discard))
	require.NoError(t, err)

	pct, price, ok := book.ChangeOver("AAPL", btStart, 30)
	require.True(t, ok)
	assert.Greater(t, pct, 0.0)
	assert.Greater(t, price, 100.0)

	_, _, ok = book.ChangeOver("GHOST", btStart, 30)
	assert.False(t, ok)
}
