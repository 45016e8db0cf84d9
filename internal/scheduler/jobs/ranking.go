// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"

	"github.com/alphaframe/alphaframe/internal/engine"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// RunBroadcaster receives completed run results
type RunBroadcaster interface {
	BroadcastRun(result *engine.RunResult)
}

// RankingJob runs the full pipeline on a schedule
type RankingJob struct {
	engine         *engine.Engine
	tickers        []string
	portfolioValue float64
	schedule       string
	broadcaster    RunBroadcaster
	logger         *logger.Logger
}

// NewRankingJob creates the scheduled pipeline job. Default schedule
// is weekdays at 16:30, after the US market close.
func NewRankingJob(eng *engine.Engine, tickers []string, portfolioValue float64, schedule string, broadcaster RunBroadcaster, log *logger.Logger) *RankingJob {
	if schedule == "" {
		schedule = "0 30 16 * * 1-5"
	}
	return &RankingJob{
		engine:         eng,
		tickers:        tickers,
		portfolioValue: portfolioValue,
		schedule:       schedule,
		broadcaster:    broadcaster,
		logger:         log,
	}
}

// Name returns the job name
func (j *RankingJob) Name() string {
	return "ranking_run"
}

// Schedule returns the cron expression
func (j *RankingJob) Schedule() string {
	return j.schedule
}

// Run executes one full pipeline run
func (j *RankingJob) Run(ctx context.Context) error {
	result, err := j.engine.Run(ctx, j.tickers, j.portfolioValue)
	if err != nil {
		return err
	}

	if j.broadcaster != nil {
		j.broadcaster.BroadcastRun(result)
	}

	j.logger.WithFields(map[string]interface{}{
		"ranked":    len(result.Ranked),
		"outcomes":  len(result.Outcomes),
		"submitted": result.Submitted,
	}).Info("Scheduled ranking run finished")

	return nil
}
