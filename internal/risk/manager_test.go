package risk

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(DefaultParameters(), logger.NewWriter(io.Discard))
}

func pickAt(ticker string, price float64) contracts.TopPick {
	return contracts.TopPick{
		RankedAsset: contracts.RankedAsset{Ticker: ticker, Price: price},
		Label:       contracts.LabelBuy,
		Qualifies:   true,
	}
}

func TestSizePositionAllocationCapBinds(t *testing.T) {
	m := newTestManager(t)

	// 100k portfolio, 2% risk, 5% stop, $50 entry:
	// risk budget 2000 / per-share risk 2.50 = 800 shares,
	// allocation cap 10000 / 50 = 200 shares, cap binds.
	proposal, rejection := m.SizePosition(pickAt("AAPL", 50.0), 100_000, 0)

	require.Nil(t, rejection)
	require.NotNil(t, proposal)
	assert.Equal(t, 200, proposal.Quantity)
	assert.Equal(t, contracts.OrderSideBuy, proposal.Side)
	assert.InDelta(t, 47.5, proposal.StopLossPrice, 1e-9)
	assert.InDelta(t, 57.5, proposal.TakeProfitPrice, 1e-9)
}

func TestSizePositionRiskBudgetBinds(t *testing.T) {
	params, err := NewParameters(0.01, 0.50, 0.10, 0.20, 10)
	require.NoError(t, err)
	m := NewManager(params, logger.NewWriter(io.Discard))

	// risk budget 1000 / per-share risk 10 = 100 shares,
	// allocation cap 50000 / 100 = 500 shares, risk binds.
	proposal, rejection := m.SizePosition(pickAt("NVDA", 100.0), 100_000, 0)

	require.Nil(t, rejection)
	assert.Equal(t, 100, proposal.Quantity)
}

func TestSizePositionBoundsHold(t *testing.T) {
	m := newTestManager(t)
	params := m.Parameters()
	portfolioValue := 250_000.0

	for _, price := range []float64{0.5, 3.14, 50, 187.2, 999.99} {
		proposal, rejection := m.SizePosition(pickAt("T", price), portfolioValue, 0)
		require.Nil(t, rejection, "price %.2f", price)

		notional := proposal.NotionalValue()
		assert.LessOrEqual(t, notional, portfolioValue*params.MaxAllocationPct+price,
			"allocation bound at price %.2f", price)
		assert.LessOrEqual(t, notional*params.StopLossPct, portfolioValue*params.MaxRiskPerPositionPct+price*params.StopLossPct,
			"risk bound at price %.2f", price)
	}
}

func TestSizePositionDailyLimit(t *testing.T) {
	m := newTestManager(t)

	proposal, rejection := m.SizePosition(pickAt("AAPL", 50.0), 100_000, 10)

	assert.Nil(t, proposal)
	require.NotNil(t, rejection)
	assert.Equal(t, contracts.RejectDailyLimitExceeded, rejection.Reason)

	// At the limit, count 5 of 5 rejects regardless of inputs
	params, err := NewParameters(0.02, 0.10, 0.05, 0.15, 5)
	require.NoError(t, err)
	m5 := NewManager(params, logger.NewWriter(io.Discard))

	_, rejection = m5.SizePosition(pickAt("TSLA", 250.0), 1_000_000, 5)
	require.NotNil(t, rejection)
	assert.Equal(t, contracts.RejectDailyLimitExceeded, rejection.Reason)
}

func TestSizePositionInvalidEntryPrice(t *testing.T) {
	m := newTestManager(t)

	for _, price := range []float64{0, -12.0} {
		proposal, rejection := m.SizePosition(pickAt("BAD", price), 100_000, 0)
		assert.Nil(t, proposal)
		require.NotNil(t, rejection)
		assert.Equal(t, contracts.RejectInvalidEntryPrice, rejection.Reason)
	}
}

func TestSizePositionTooSmall(t *testing.T) {
	m := newTestManager(t)

	// Tiny portfolio, expensive stock: both quantities floor to zero
	proposal, rejection := m.SizePosition(pickAt("BRK", 5000.0), 1000, 0)

	assert.Nil(t, proposal)
	require.NotNil(t, rejection)
	assert.Equal(t, contracts.RejectPositionTooSmall, rejection.Reason)
}

func TestSizePositionSellSideMirrorsExits(t *testing.T) {
	m := newTestManager(t)

	proposal, rejection := m.SizePositionSide(pickAt("AAPL", 100.0), contracts.OrderSideSell, 100_000, 0)

	require.Nil(t, rejection)
	assert.Equal(t, contracts.OrderSideSell, proposal.Side)
	assert.InDelta(t, 105.0, proposal.StopLossPrice, 1e-9)
	assert.InDelta(t, 85.0, proposal.TakeProfitPrice, 1e-9)
}

func TestNewParametersValidation(t *testing.T) {
	tests := []struct {
		name                                  string
		risk, alloc, stopLoss, takeProfit     float64
		maxTrades                             int
	}{
		{"zero risk", 0, 0.10, 0.05, 0.15, 10},
		{"risk above one", 1.5, 0.10, 0.05, 0.15, 10},
		{"zero allocation", 0.02, 0, 0.05, 0.15, 10},
		{"zero stop loss", 0.02, 0.10, 0, 0.15, 10},
		{"stop loss of one", 0.02, 0.10, 1.0, 0.15, 10},
		{"negative take profit", 0.02, 0.10, 0.05, -0.1, 10},
		{"zero daily limit", 0.02, 0.10, 0.05, 0.15, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParameters(tt.risk, tt.alloc, tt.stopLoss, tt.takeProfit, tt.maxTrades)
			assert.Error(t, err)
		})
	}
}

func TestDefaultParametersValid(t *testing.T) {
	assert.NoError(t, DefaultParameters().Validate())
}
