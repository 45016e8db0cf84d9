package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alphaframe/alphaframe/internal/api"
	"github.com/alphaframe/alphaframe/internal/api/handlers"
	"github.com/alphaframe/alphaframe/internal/scheduler"
	"github.com/alphaframe/alphaframe/internal/scheduler/jobs"
)

// apiCmd starts the REST API server
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health               - Health check
  POST /api/ranking/run      - Trigger a pipeline run
  GET  /api/ranking/latest   - Latest persisted ranking
  GET  /api/ranking/picks    - Today's labeled top picks
  GET  /api/trading/orders   - Recent order log
  GET  /api/trading/account  - Broker account state
  GET  /api/trading/limits   - Guardrails and daily usage
  GET  /api/scheduler/jobs   - Scheduled jobs with history
  POST /api/scheduler/jobs/{name}/run - Trigger a job now
  WS   /ws/runs              - Live run results

The ranking job runs on its cron schedule while the server is up.

Example:
  alphaframe api
  alphaframe api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	hub := api.NewHub(a.log)

	// The scheduler runs alongside the server so the ranking job
	// fires on its cron schedule and can be triggered over HTTP
	sched := scheduler.New(a.log)
	job := jobs.NewRankingJob(a.engine, a.tickers(), a.cfg.Risk.PortfolioValue, "", hub, a.log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("failed to register job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	rankingHandler := handlers.NewRankingHandler(a.engine, a.rankingRepo, a.selector, hub, a.cfg, a.log)
	tradingHandler := handlers.NewTradingHandler(a.broker, a.orderRepo, a.counter, a.riskParams, a.cfg.Risk.DryRun, a.log)
	schedulerHandler := handlers.NewSchedulerHandler(sched, a.log)

	router := api.NewRouter(rankingHandler, tradingHandler, schedulerHandler, hub, a.log)
	server := api.New(a.cfg, a.log, router)

	// Graceful shutdown on SIGINT/SIGTERM
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.log.WithField("signal", sig.String()).Info("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
