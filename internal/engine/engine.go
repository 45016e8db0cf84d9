// Package engine wires the ranking pipeline end to end: assemble
// signals, rank, select picks, size positions, propose orders.
package engine

import (
	"context"
	"time"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/internal/execution"
	"github.com/alphaframe/alphaframe/internal/ranking"
	"github.com/alphaframe/alphaframe/internal/risk"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// SnapshotSink persists ranking results. Persistence is best-effort;
// a sink failure never blocks producing picks.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, snapshot contracts.RankingSnapshot) error
}

// Engine runs the composite ranking and order sizing pipeline
type Engine struct {
	assembler   *Assembler
	ranker      *ranking.Ranker
	selector    *ranking.Selector
	riskManager *risk.Manager
	executor    *execution.Executor
	sink        SnapshotSink
	dryRun      bool
	logger      *logger.Logger
}

// Config bundles the engine collaborators
type Config struct {
	Assembler   *Assembler
	Ranker      *ranking.Ranker
	Selector    *ranking.Selector
	RiskManager *risk.Manager
	Executor    *execution.Executor
	Sink        SnapshotSink
	DryRun      bool
}

// RunResult is the outcome of one full pipeline run
type RunResult struct {
	RunAt     time.Time                  `json:"run_at"`
	Ranked    []contracts.RankedAsset    `json:"ranked"`
	Outcomes  []contracts.SizingOutcome  `json:"outcomes"`
	Warnings  []contracts.DataGapWarning `json:"warnings,omitempty"`
	Submitted int                        `json:"submitted"`
	Duration  time.Duration              `json:"duration"`
}

// New creates the engine
func New(cfg Config, log *logger.Logger) *Engine {
	return &Engine{
		assembler:   cfg.Assembler,
		ranker:      cfg.Ranker,
		selector:    cfg.Selector,
		riskManager: cfg.RiskManager,
		executor:    cfg.Executor,
		sink:        cfg.Sink,
		dryRun:      cfg.DryRun,
		logger:      log,
	}
}

// RankAndSize runs the in-memory pipeline over an assembled batch:
// rank, select top picks, size each pick against the guardrails.
// Every sized pick comes back as either a proposal or a typed
// rejection; the run never aborts on a per-asset boundary condition.
func (e *Engine) RankAndSize(signals []contracts.AssetSignal, portfolioValue float64, todayTradeCount int) ([]contracts.RankedAsset, []contracts.SizingOutcome) {
	ranked := e.ranker.Rank(signals)
	picks := e.selector.SelectTopPicks(ranked)

	outcomes := make([]contracts.SizingOutcome, 0, len(picks))
	for _, pick := range picks {
		proposal, rejection := e.riskManager.SizePosition(pick, portfolioValue, todayTradeCount)
		outcomes = append(outcomes, contracts.SizingOutcome{
			Pick:      pick,
			Proposal:  proposal,
			Rejection: rejection,
		})
	}

	return ranked, outcomes
}

// Run executes the full pipeline: fetch signals, rank and size, then
// hand accepted proposals to the executor. The daily trade count is
// re-read before each sizing so concurrent runs share the budget.
func (e *Engine) Run(ctx context.Context, tickers []string, portfolioValue float64) (*RunResult, error) {
	start := time.Now()

	batch, err := e.assembler.Assemble(ctx, tickers)
	if err != nil {
		return nil, err
	}

	ranked := e.ranker.Rank(batch.Signals)
	picks := e.selector.SelectTopPicks(ranked)

	result := &RunResult{
		RunAt:    start,
		Ranked:   ranked,
		Warnings: batch.Warnings,
	}

	e.persistSnapshot(ctx, ranked, start)

	for _, pick := range picks {
		proposal, rejection := e.riskManager.SizePosition(pick, portfolioValue, e.executor.TradesToday())
		outcome := contracts.SizingOutcome{Pick: pick, Proposal: proposal, Rejection: rejection}

		if proposal != nil {
			req := execution.ProposeOrder(proposal, e.dryRun)
			if _, err := e.executor.Execute(ctx, req); err != nil {
				e.logger.WithError(err).WithField("ticker", pick.Ticker).Error("Order execution failed")
			} else if !e.dryRun {
				result.Submitted++
			}
		} else {
			e.executor.RecordRejection(ctx, rejection)
			e.logger.WithFields(map[string]interface{}{
				"ticker": pick.Ticker,
				"reason": rejection.Reason,
			}).Info("Position rejected by guardrails")
		}

		result.Outcomes = append(result.Outcomes, outcome)
	}

	result.Duration = time.Since(start)

	e.logger.WithFields(map[string]interface{}{
		"tickers":   len(tickers),
		"ranked":    len(ranked),
		"picks":     len(picks),
		"submitted": result.Submitted,
		"dry_run":   e.dryRun,
		"duration":  result.Duration,
	}).Info("Pipeline run completed")

	return result, nil
}

// persistSnapshot is fire-and-forget
func (e *Engine) persistSnapshot(ctx context.Context, ranked []contracts.RankedAsset, runAt time.Time) {
	if e.sink == nil {
		return
	}
	snapshot := contracts.RankingSnapshot{RunAt: runAt, Assets: ranked}
	if err := e.sink.SaveSnapshot(ctx, snapshot); err != nil {
		e.logger.WithError(err).Warn("Failed to persist ranking snapshot")
	}
}
