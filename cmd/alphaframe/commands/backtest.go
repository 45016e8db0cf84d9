package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alphaframe/alphaframe/internal/backtest"
)

// backtestCmd replays the strategy over historical prices
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay the strategy over historical prices",
	Long: `Simulates the ranking strategy over a historical period and
reports total return, CAGR, Sharpe ratio, maximum drawdown, and trade
statistics. Rankings are recomputed from price momentum with neutral
sentiment; with --from-snapshots the persisted daily rankings are
replayed instead.

Example:
  alphaframe backtest --start 2026-01-02 --end 2026-06-30
  alphaframe backtest --rebalance-days 20 --top 3 --from-snapshots`,
	RunE: runBacktest,
}

var (
	btStart         string
	btEnd           string
	btCapital       float64
	btRebalanceDays int
	btTopN          int
	btMaxPosition   float64
	btCost          float64
	btFromSnapshots bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().StringVar(&btStart, "start", "", "start date YYYY-MM-DD (default 90 days ago)")
	backtestCmd.Flags().StringVar(&btEnd, "end", "", "end date YYYY-MM-DD (default today)")
	backtestCmd.Flags().Float64Var(&btCapital, "capital", 0, "initial capital (default PORTFOLIO_VALUE)")
	backtestCmd.Flags().IntVar(&btRebalanceDays, "rebalance-days", 5, "trading days between rebalances")
	backtestCmd.Flags().IntVar(&btTopN, "top", 0, "positions held (default TOP_N)")
	backtestCmd.Flags().Float64Var(&btMaxPosition, "max-position", 0.20, "per-position allocation cap")
	backtestCmd.Flags().Float64Var(&btCost, "cost", 0.001, "transaction cost per side")
	backtestCmd.Flags().BoolVar(&btFromSnapshots, "from-snapshots", false, "replay persisted rankings instead of recomputing momentum")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer a.close()

	cfg := backtest.DefaultConfig()
	cfg.RebalanceDays = btRebalanceDays
	cfg.MaxPositionPct = btMaxPosition
	cfg.TransactionCostPct = btCost
	cfg.TopN = a.cfg.Strategy.TopN
	if btTopN > 0 {
		cfg.TopN = btTopN
	}
	cfg.InitialCapital = a.cfg.Risk.PortfolioValue
	if btCapital > 0 {
		cfg.InitialCapital = btCapital
	}

	cfg.EndDate = time.Now().Truncate(24 * time.Hour)
	if btEnd != "" {
		if cfg.EndDate, err = time.Parse("2006-01-02", btEnd); err != nil {
			return fmt.Errorf("invalid end date %q: %w", btEnd, err)
		}
	}
	cfg.StartDate = cfg.EndDate.AddDate(0, 0, -90)
	if btStart != "" {
		if cfg.StartDate, err = time.Parse("2006-01-02", btStart); err != nil {
			return fmt.Errorf("invalid start date %q: %w", btStart, err)
		}
	}

	var snapshots backtest.SnapshotSource
	if btFromSnapshots {
		snapshots = a.rankingRepo
	}

	engine := backtest.NewEngine(a.yahoo, a.ranker, snapshots, a.log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := engine.Run(ctx, a.tickers(), cfg)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Period\t%s to %s\n", result.StartDate.Format("2006-01-02"), result.EndDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Trading days\t%d\n", result.TradingDays)
	fmt.Fprintf(w, "Rebalances\t%d\n", result.RebalanceCount)
	fmt.Fprintf(w, "Initial capital\t$%.2f\n", result.InitialCapital)
	fmt.Fprintf(w, "Final equity\t$%.2f\n", result.FinalEquity)
	fmt.Fprintf(w, "Total return\t%.2f%%\n", result.TotalReturn*100)
	fmt.Fprintf(w, "CAGR\t%.2f%%\n", result.CAGR*100)
	fmt.Fprintf(w, "Volatility\t%.2f%%\n", result.Volatility*100)
	fmt.Fprintf(w, "Sharpe ratio\t%.2f\n", result.SharpeRatio)
	fmt.Fprintf(w, "Sortino ratio\t%.2f\n", result.SortinoRatio)
	fmt.Fprintf(w, "Max drawdown\t%.2f%%\n", result.MaxDrawdown*100)
	fmt.Fprintf(w, "Total trades\t%d\n", result.TotalTrades)
	fmt.Fprintf(w, "Win rate\t%.2f%%\n", result.WinRate*100)
	fmt.Fprintf(w, "Transaction costs\t$%.2f\n", result.TotalCosts)
	w.Flush()

	return nil
}
