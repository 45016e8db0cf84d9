package handlers

import (
	"net/http"

	"github.com/alphaframe/alphaframe/internal/execution"
	"github.com/alphaframe/alphaframe/internal/risk"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// TradingHandler handles trading API endpoints
type TradingHandler struct {
	broker  execution.Broker
	repo    *execution.Repository
	counter *risk.DailyTradeCounter
	params  risk.Parameters
	dryRun  bool
	logger  *logger.Logger
}

// NewTradingHandler creates a new trading handler
func NewTradingHandler(
	broker execution.Broker,
	repo *execution.Repository,
	counter *risk.DailyTradeCounter,
	params risk.Parameters,
	dryRun bool,
	log *logger.Logger,
) *TradingHandler {
	return &TradingHandler{
		broker:  broker,
		repo:    repo,
		counter: counter,
		params:  params,
		dryRun:  dryRun,
		logger:  log,
	}
}

// GetOrders returns the most recent order log entries
// GET /api/trading/orders?limit=50
func (h *TradingHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)

	orders, err := h.repo.GetOrders(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get orders")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(orders),
		"orders": orders,
	})
}

// GetAccount returns the broker account state
// GET /api/trading/account
func (h *TradingHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.broker.GetAccount(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get account")
		respondError(w, http.StatusBadGateway, "Failed to retrieve account")
		return
	}

	respondJSON(w, http.StatusOK, account)
}

// GetLimits returns the configured guardrails and today's usage
// GET /api/trading/limits
func (h *TradingHandler) GetLimits(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"max_risk_per_position_pct": h.params.MaxRiskPerPositionPct,
		"max_allocation_pct":        h.params.MaxAllocationPct,
		"stop_loss_pct":             h.params.StopLossPct,
		"take_profit_pct":           h.params.TakeProfitPct,
		"max_trades_per_day":        h.params.MaxTradesPerDay,
		"trades_today":              h.counter.Count(),
		"dry_run":                   h.dryRun,
	})
}
