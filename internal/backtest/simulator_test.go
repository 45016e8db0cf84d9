package backtest

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

func newSim(capital float64) *Simulator {
	s := NewSimulator(logger.NewWriter(io.Discard))
	s.Initialize(capital)
	return s
}

var simDay = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestSimulatorBuyAndSellAtProfit(t *testing.T) {
	s := newSim(10_000)

	require.True(t, s.buy(simDay, "AAPL", 50, 100.0, 0))
	assert.Equal(t, 5_000.0, s.Equity(map[string]float64{"AAPL": 100}))

	require.True(t, s.sell(simDay, "AAPL", 50, 110.0, 0))
	assert.InDelta(t, 10_500.0, s.Equity(nil), 1e-9)

	stats := s.Stats()
	assert.Equal(t, 2, stats.TotalTrades)
	assert.Equal(t, 1, stats.WinningTrades)
	assert.Equal(t, 0, stats.LosingTrades)

	trades := s.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, contracts.OrderSideSell, trades[1].Side)
	assert.InDelta(t, 500.0, trades[1].PnL, 1e-9)
	assert.InDelta(t, 0.1, trades[1].ReturnPct, 1e-9)
}

func TestSimulatorSellAtLossCounts(t *testing.T) {
	s := newSim(10_000)

	require.True(t, s.buy(simDay, "AAPL", 50, 100.0, 0))
	require.True(t, s.sell(simDay, "AAPL", 50, 90.0, 0))

	stats := s.Stats()
	assert.Equal(t, 1, stats.LosingTrades)
	assert.Equal(t, 0, stats.WinningTrades)
	assert.InDelta(t, 9_500.0, s.Equity(nil), 1e-9)
}

func TestSimulatorBuyShrinksToAvailableCash(t *testing.T) {
	s := newSim(1_000)

	// 20 shares at 100 do not fit; only 10 do
	require.True(t, s.buy(simDay, "AAPL", 20, 100.0, 0))
	trades := s.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, 10, trades[0].Shares)
	assert.InDelta(t, 0.0, s.Equity(map[string]float64{"AAPL": 100})-1_000.0, 1e-9)
}

func TestSimulatorBuyAppliesTransactionCost(t *testing.T) {
	s := newSim(10_000)

	require.True(t, s.buy(simDay, "AAPL", 10, 100.0, 0.01))
	stats := s.Stats()
	assert.InDelta(t, 10.0, stats.TotalCosts, 1e-9)
	// cash: 10000 - 1000 - 10
	assert.InDelta(t, 8_990.0, s.Equity(nil)-1_010.0, 1e-9)
}

func TestSimulatorRebalanceClosesDroppedPositions(t *testing.T) {
	s := newSim(10_000)
	prices := map[string]float64{"AAPL": 100, "MSFT": 200}

	s.Rebalance(simDay, []string{"AAPL"}, prices, 1.0, 0)
	require.Contains(t, s.positions, "AAPL")

	// Next rebalance swaps into MSFT
	s.Rebalance(simDay.AddDate(0, 0, 7), []string{"MSFT"}, prices, 1.0, 0)
	assert.NotContains(t, s.positions, "AAPL")
	assert.Contains(t, s.positions, "MSFT")
}

func TestSimulatorRebalanceEqualWeightWithCap(t *testing.T) {
	s := newSim(100_000)
	prices := map[string]float64{"AAPL": 100, "MSFT": 100}

	// Two picks at a 20% cap each leave 60% in cash
	s.Rebalance(simDay, []string{"AAPL", "MSFT"}, prices, 0.20, 0)

	require.Contains(t, s.positions, "AAPL")
	require.Contains(t, s.positions, "MSFT")
	assert.Equal(t, 200, s.positions["AAPL"].shares)
	assert.Equal(t, 200, s.positions["MSFT"].shares)
	assert.InDelta(t, 100_000.0, s.Equity(prices), 1e-9)
}

func TestSimulatorRebalanceIsIdempotentAtTarget(t *testing.T) {
	s := newSim(100_000)
	prices := map[string]float64{"AAPL": 100}

	first := s.Rebalance(simDay, []string{"AAPL"}, prices, 1.0, 0)
	assert.Equal(t, 1, first)

	second := s.Rebalance(simDay.AddDate(0, 0, 7), []string{"AAPL"}, prices, 1.0, 0)
	assert.Equal(t, 0, second, "already at target, nothing to trade")
}

func TestSimulatorEquityMarksToMarket(t *testing.T) {
	s := newSim(10_000)
	require.True(t, s.buy(simDay, "AAPL", 50, 100.0, 0))

	assert.InDelta(t, 10_000.0, s.Equity(map[string]float64{"AAPL": 100}), 1e-9)
	assert.InDelta(t, 10_500.0, s.Equity(map[string]float64{"AAPL": 110}), 1e-9)
	// No price available, position carried at cost
	assert.InDelta(t, 10_000.0, s.Equity(nil), 1e-9)
}
