package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alphaframe/alphaframe/internal/scheduler"
	"github.com/alphaframe/alphaframe/internal/scheduler/jobs"
)

// schedulerCmd runs the pipeline on a cron schedule
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the ranking pipeline on a schedule",
	Long: `Starts the scheduler and runs the full pipeline on a cron
schedule. The default schedule fires weekdays at 16:30 local time.

Example:
  alphaframe scheduler
  alphaframe scheduler --schedule "0 0 17 * * 1-5"`,
	RunE: runScheduler,
}

var scheduleExpr string

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.Flags().StringVar(&scheduleExpr, "schedule", "", "cron expression with seconds (default weekdays 16:30)")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer a.close()

	sched := scheduler.New(a.log)

	job := jobs.NewRankingJob(
		a.engine,
		a.tickers(),
		a.cfg.Risk.PortfolioValue,
		scheduleExpr,
		nil,
		a.log,
	)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("failed to register job: %w", err)
	}

	sched.Start()
	fmt.Printf("Scheduler running, job %q on schedule %q\n", job.Name(), job.Schedule())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
