package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dryRunFlag  bool
	tickersFlag []string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alphaframe",
	Short: "Composite ranking and risk-guarded paper trading",
	Long: `AlphaFrame ranks a universe of tickers by blending price momentum
with news sentiment into a 0-100 composite score, selects the top
picks, sizes positions against risk guardrails, and proposes paper
trade orders.

Examples:
  alphaframe rank
  alphaframe rank --tickers AAPL,MSFT,NVDA
  alphaframe api
  alphaframe scheduler`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRunFlag, "dry-run", true, "generate and log orders without submitting them")
	rootCmd.PersistentFlags().StringSliceVar(&tickersFlag, "tickers", nil, "comma-separated ticker universe (default from TICKERS env)")
}
