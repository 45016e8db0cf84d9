package execution

import (
	"context"
	"fmt"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/internal/risk"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// Executor is the only path through which order requests reach the
// broker. It enforces the dry-run invariant and holds the daily trade
// budget: a slot is reserved atomically before submission and given
// back if the broker rejects the order.
type Executor struct {
	broker    Broker
	repo      *Repository
	counter   *risk.DailyTradeCounter
	maxTrades int
	logger    *logger.Logger
}

// NewExecutor creates a new executor. repo may be nil when no
// database is configured.
func NewExecutor(broker Broker, repo *Repository, counter *risk.DailyTradeCounter, maxTrades int, log *logger.Logger) *Executor {
	return &Executor{
		broker:    broker,
		repo:      repo,
		counter:   counter,
		maxTrades: maxTrades,
		logger:    log,
	}
}

// Execute submits the request unless it is a dry run. Dry-run
// requests are logged and recorded but never forwarded.
func (e *Executor) Execute(ctx context.Context, req *contracts.OrderRequest) (*contracts.OrderResult, error) {
	if req.DryRun {
		e.logger.WithFields(map[string]interface{}{
			"ticker":      req.Ticker,
			"side":        req.Side,
			"quantity":    req.Quantity,
			"stop_loss":   req.StopLossPrice,
			"take_profit": req.TakeProfitPrice,
		}).Info("Dry run, order not submitted")

		e.saveOrder(ctx, req, nil)
		return &contracts.OrderResult{Status: contracts.OrderStatusDryRun}, nil
	}

	// Reserve a budget slot before talking to the broker so two
	// concurrent runs at limit-1 cannot both submit
	if !e.counter.TryReserve(e.maxTrades) {
		req.Status = contracts.OrderStatusRejected
		e.saveOrder(ctx, req, nil)
		return nil, fmt.Errorf("daily trade limit reached, order for %s not submitted", req.Ticker)
	}

	result, err := e.broker.SubmitOrder(ctx, req)
	if err != nil {
		e.counter.Release()
		req.Status = contracts.OrderStatusRejected
		e.saveOrder(ctx, req, nil)
		return nil, fmt.Errorf("order submission failed for %s: %w", req.Ticker, err)
	}

	req.Status = result.Status
	count := e.counter.Count()
	e.saveOrder(ctx, req, result)

	e.logger.WithFields(map[string]interface{}{
		"ticker":       req.Ticker,
		"order_id":     result.OrderID,
		"status":       result.Status,
		"trades_today": count,
	}).Info("Order submitted")

	return result, nil
}

// RecordRejection persists a sizing rejection best-effort
func (e *Executor) RecordRejection(ctx context.Context, rejection *contracts.RiskRejection) {
	if e.repo == nil {
		return
	}
	if err := e.repo.SaveRejection(ctx, rejection); err != nil {
		e.logger.WithError(err).WithField("ticker", rejection.Ticker).Warn("Failed to persist rejection")
	}
}

// TradesToday returns the submitted trade count for today
func (e *Executor) TradesToday() int {
	return e.counter.Count()
}

// saveOrder persists the request best-effort. Persistence failure
// never blocks execution.
func (e *Executor) saveOrder(ctx context.Context, req *contracts.OrderRequest, result *contracts.OrderResult) {
	if e.repo == nil {
		return
	}
	if err := e.repo.SaveOrder(ctx, req, result); err != nil {
		e.logger.WithError(err).Warn("Failed to persist order")
	}
}
