package risk

import (
	"fmt"
	"math"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// Manager sizes positions against the configured guardrails. It
// depends only on the entry price, the portfolio value, and the
// limits; a scoring malfunction upstream can never loosen a bound.
type Manager struct {
	params Parameters
	logger *logger.Logger
}

// NewManager creates a new risk manager
func NewManager(params Parameters, log *logger.Logger) *Manager {
	return &Manager{
		params: params,
		logger: log,
	}
}

// Parameters returns the configured guardrails
func (m *Manager) Parameters() Parameters {
	return m.params
}

// SizePosition computes a bounded long position for one pick.
// Quantity is the lesser of what the risk budget and the allocation
// cap allow. Boundary conditions come back as a typed rejection, not
// an error; the caller keeps processing remaining picks.
func (m *Manager) SizePosition(pick contracts.TopPick, portfolioValue float64, todayTradeCount int) (*contracts.PositionProposal, *contracts.RiskRejection) {
	return m.SizePositionSide(pick, contracts.OrderSideBuy, portfolioValue, todayTradeCount)
}

// SizePositionSide sizes a position for either side. Stop and
// take-profit levels mirror around the entry price for sells.
func (m *Manager) SizePositionSide(pick contracts.TopPick, side contracts.OrderSide, portfolioValue float64, todayTradeCount int) (*contracts.PositionProposal, *contracts.RiskRejection) {
	if todayTradeCount >= m.params.MaxTradesPerDay {
		return nil, m.reject(pick.Ticker, contracts.RejectDailyLimitExceeded,
			fmt.Sprintf("%d trades already today, limit %d", todayTradeCount, m.params.MaxTradesPerDay))
	}

	entryPrice := pick.Price
	perShareRisk := entryPrice * m.params.StopLossPct
	if perShareRisk <= 0 {
		return nil, m.reject(pick.Ticker, contracts.RejectInvalidEntryPrice,
			fmt.Sprintf("entry price %.4f yields no usable per-share risk", entryPrice))
	}

	riskBudget := portfolioValue * m.params.MaxRiskPerPositionPct
	allocCap := portfolioValue * m.params.MaxAllocationPct

	qtyByRisk := int(math.Floor(riskBudget / perShareRisk))
	qtyByAllocation := int(math.Floor(allocCap / entryPrice))

	quantity := qtyByRisk
	if qtyByAllocation < quantity {
		quantity = qtyByAllocation
	}
	if quantity <= 0 {
		return nil, m.reject(pick.Ticker, contracts.RejectPositionTooSmall,
			fmt.Sprintf("risk qty %d, allocation qty %d", qtyByRisk, qtyByAllocation))
	}

	stopLoss := entryPrice * (1 - m.params.StopLossPct)
	takeProfit := entryPrice * (1 + m.params.TakeProfitPct)
	if side == contracts.OrderSideSell {
		stopLoss = entryPrice * (1 + m.params.StopLossPct)
		takeProfit = entryPrice * (1 - m.params.TakeProfitPct)
	}

	proposal := &contracts.PositionProposal{
		Ticker:              pick.Ticker,
		Side:                side,
		Quantity:            quantity,
		EntryReferencePrice: entryPrice,
		StopLossPrice:       stopLoss,
		TakeProfitPrice:     takeProfit,
	}

	m.logger.WithFields(map[string]interface{}{
		"ticker":      pick.Ticker,
		"quantity":    quantity,
		"entry_price": entryPrice,
		"stop_loss":   proposal.StopLossPrice,
		"take_profit": proposal.TakeProfitPrice,
		"notional":    proposal.NotionalValue(),
	}).Info("Position sized")

	return proposal, nil
}

func (m *Manager) reject(ticker, reason, detail string) *contracts.RiskRejection {
	m.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"reason": reason,
		"detail": detail,
	}).Warn("Position rejected")

	return &contracts.RiskRejection{
		Ticker: ticker,
		Reason: reason,
		Detail: detail,
	}
}
