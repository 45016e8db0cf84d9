package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// rankCmd runs the pipeline once and prints the result
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Run the ranking pipeline once",
	Long: `Fetches signals for the configured universe, ranks every ticker by
composite score, selects the top picks, and sizes positions against
the risk guardrails. Orders are proposed in dry-run mode unless
--dry-run=false and Alpaca keys are configured.

Example:
  alphaframe rank
  alphaframe rank --tickers AAPL,MSFT,NVDA --dry-run=false`,
	RunE: runRank,
}

func init() {
	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := a.engine.Run(ctx, a.tickers(), a.portfolioValue(ctx))
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "RANK\tTICKER\tCOMPOSITE\tPRICE SCORE\tSENTIMENT\tHEADLINES")
	for _, asset := range result.Ranked {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%.1f\t%d\n",
			asset.Rank, asset.Ticker, asset.CompositeScore,
			asset.TechnicalScore, asset.SentimentScore, asset.HeadlineCount)
	}
	w.Flush()

	fmt.Println()
	fmt.Println("Sizing outcomes:")
	for _, outcome := range result.Outcomes {
		if outcome.Accepted() {
			p := outcome.Proposal
			fmt.Printf("  %-6s %s  qty=%d  entry=%.2f  stop=%.2f  target=%.2f  dry_run=%v\n",
				outcome.Pick.Ticker, outcome.Pick.Label, p.Quantity,
				p.EntryReferencePrice, p.StopLossPrice, p.TakeProfitPrice, a.cfg.Risk.DryRun)
		} else {
			fmt.Printf("  %-6s %s  rejected: %s\n",
				outcome.Pick.Ticker, outcome.Pick.Label, outcome.Rejection.Reason)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\n%d data gap(s) substituted with neutral values\n", len(result.Warnings))
	}
	fmt.Printf("\nSubmitted %d order(s) in %s\n", result.Submitted, result.Duration.Round(time.Millisecond))

	return nil
}
