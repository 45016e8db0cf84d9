// Package backtest replays the ranking strategy over historical daily
// closes and reports the performance metrics of the resulting
// portfolio. Rankings are either recomputed from price momentum with
// neutral sentiment, or read back from persisted ranking snapshots.
package backtest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/internal/ranking"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// SnapshotSource reads persisted per-date rankings, typically the
// ranking repository
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, date time.Time, limit int) ([]contracts.RankedAsset, error)
}

// Config holds the simulation parameters
type Config struct {
	StartDate          time.Time
	EndDate            time.Time
	InitialCapital     float64
	RebalanceDays      int     // trading days between rebalances
	TopN               int     // positions held after each rebalance
	MaxPositionPct     float64 // per-position allocation cap
	TransactionCostPct float64 // cost per side as a fraction of value
	LookbackDays       int     // momentum window in calendar days
}

// DefaultConfig returns the standard simulation parameters
func DefaultConfig() Config {
	return Config{
		InitialCapital:     100_000,
		RebalanceDays:      5,
		TopN:               5,
		MaxPositionPct:     0.20,
		TransactionCostPct: 0.001,
		LookbackDays:       30,
	}
}

// Validate checks the configuration before a run
func (c Config) Validate() error {
	if !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("end date %s must be after start date %s",
			c.EndDate.Format("2006-01-02"), c.StartDate.Format("2006-01-02"))
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial capital must be positive, got %.2f", c.InitialCapital)
	}
	if c.RebalanceDays <= 0 {
		return fmt.Errorf("rebalance days must be positive, got %d", c.RebalanceDays)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.MaxPositionPct <= 0 || c.MaxPositionPct > 1 {
		return fmt.Errorf("max position pct must be in (0, 1], got %.4f", c.MaxPositionPct)
	}
	if c.TransactionCostPct < 0 {
		return fmt.Errorf("transaction cost pct must be non-negative, got %.4f", c.TransactionCostPct)
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback days must be positive, got %d", c.LookbackDays)
	}
	return nil
}

// EquityPoint is one mark on the equity curve
type EquityPoint struct {
	Date   time.Time `json:"date"`
	Equity float64   `json:"equity"`
	Return float64   `json:"return"`
}

// Result holds the completed simulation and its metrics
type Result struct {
	Config         Config        `json:"-"`
	StartDate      time.Time     `json:"start_date"`
	EndDate        time.Time     `json:"end_date"`
	Duration       time.Duration `json:"duration"`
	TradingDays    int           `json:"trading_days"`
	RebalanceCount int           `json:"rebalance_count"`

	InitialCapital   float64 `json:"initial_capital"`
	FinalEquity      float64 `json:"final_equity"`
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	CAGR             float64 `json:"cagr"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	WinRate          float64 `json:"win_rate"`

	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	TotalCosts    float64 `json:"total_costs"`

	EquityCurve []EquityPoint `json:"equity_curve"`
	Trades      []Trade       `json:"trades"`
}

// Engine drives the historical simulation
type Engine struct {
	prices    PriceSource
	ranker    *ranking.Ranker
	snapshots SnapshotSource
	simulator *Simulator
	logger    *logger.Logger
}

// NewEngine creates a backtest engine. snapshots may be nil, in which
// case rankings are recomputed from price momentum with neutral
// sentiment for every rebalance date.
func NewEngine(prices PriceSource, ranker *ranking.Ranker, snapshots SnapshotSource, log *logger.Logger) *Engine {
	return &Engine{
		prices:    prices,
		ranker:    ranker,
		snapshots: snapshots,
		simulator: NewSimulator(log),
		logger:    log,
	}
}

// Run simulates the strategy over the configured period
func (e *Engine) Run(ctx context.Context, tickers []string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e.logger.WithFields(map[string]interface{}{
		"start_date":      cfg.StartDate.Format("2006-01-02"),
		"end_date":        cfg.EndDate.Format("2006-01-02"),
		"initial_capital": cfg.InitialCapital,
		"rebalance_days":  cfg.RebalanceDays,
		"top_n":           cfg.TopN,
	}).Info("Starting backtest")

	startTime := time.Now()

	// History includes the momentum lookback before the start date,
	// padded so a weekend at the boundary still leaves a bar
	historyFrom := cfg.StartDate.AddDate(0, 0, -(cfg.LookbackDays + 7))
	book, err := BuildPriceBook(ctx, e.prices, tickers, historyFrom, cfg.EndDate, e.logger)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Config:         cfg,
		StartDate:      cfg.StartDate,
		EndDate:        cfg.EndDate,
		InitialCapital: cfg.InitialCapital,
	}

	e.simulator.Initialize(cfg.InitialCapital)

	sinceRebalance := cfg.RebalanceDays // rebalance on the first trading day
	for date := cfg.StartDate; !date.After(cfg.EndDate); date = date.AddDate(0, 0, 1) {
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}
		result.TradingDays++

		prices := book.PricesOn(date, tickers)

		if sinceRebalance >= cfg.RebalanceDays {
			ranked, err := e.rankingsOn(ctx, date, tickers, book, cfg)
			if err != nil {
				e.logger.WithError(err).WithField("date", date.Format("2006-01-02")).Warn("Ranking failed, holding positions")
			} else if len(ranked) > 0 {
				picks := topTickers(ranked, cfg.TopN)
				e.simulator.Rebalance(date, picks, prices, cfg.MaxPositionPct, cfg.TransactionCostPct)
				result.RebalanceCount++
				sinceRebalance = 0
			}
		} else {
			sinceRebalance++
		}

		equity := e.simulator.Equity(prices)
		result.EquityCurve = append(result.EquityCurve, EquityPoint{
			Date:   date,
			Equity: equity,
			Return: (equity - cfg.InitialCapital) / cfg.InitialCapital,
		})
	}

	result.Duration = time.Since(startTime)
	result.Trades = e.simulator.Trades()
	if n := len(result.EquityCurve); n > 0 {
		result.FinalEquity = result.EquityCurve[n-1].Equity
	} else {
		result.FinalEquity = cfg.InitialCapital
	}

	e.calculateMetrics(result)

	e.logger.WithFields(map[string]interface{}{
		"trading_days": result.TradingDays,
		"rebalances":   result.RebalanceCount,
		"total_return": fmt.Sprintf("%.2f%%", result.TotalReturn*100),
		"sharpe_ratio": fmt.Sprintf("%.2f", result.SharpeRatio),
		"max_drawdown": fmt.Sprintf("%.2f%%", result.MaxDrawdown*100),
	}).Info("Backtest completed")

	return result, nil
}

// rankingsOn produces the cross-sectional ranking as it would have
// looked on the given date
func (e *Engine) rankingsOn(ctx context.Context, date time.Time, tickers []string, book *PriceBook, cfg Config) ([]contracts.RankedAsset, error) {
	if e.snapshots != nil {
		return e.snapshots.GetSnapshot(ctx, date, cfg.TopN)
	}

	// Recompute from momentum over the lookback window. Sentiment is
	// neutral for every asset, so the composite ordering is driven by
	// the price column alone.
	signals := make([]contracts.AssetSignal, 0, len(tickers))
	for _, ticker := range tickers {
		pct, price, ok := book.ChangeOver(ticker, date, cfg.LookbackDays)
		if !ok {
			continue
		}
		signals = append(signals, contracts.AssetSignal{
			Ticker:        ticker,
			PercentChange: pct,
			Price:         price,
			CollectedAt:   date,
		})
	}

	return e.ranker.Rank(signals), nil
}

func topTickers(ranked []contracts.RankedAsset, n int) []string {
	if n > len(ranked) {
		n = len(ranked)
	}
	picks := make([]string, 0, n)
	for _, asset := range ranked[:n] {
		picks = append(picks, asset.Ticker)
	}
	return picks
}

// calculateMetrics derives the performance metrics from the equity
// curve and trade statistics
func (e *Engine) calculateMetrics(result *Result) {
	stats := e.simulator.Stats()
	result.TotalTrades = stats.TotalTrades
	result.WinningTrades = stats.WinningTrades
	result.LosingTrades = stats.LosingTrades
	result.TotalCosts = stats.TotalCosts
	closed := result.WinningTrades + result.LosingTrades
	if closed > 0 {
		result.WinRate = float64(result.WinningTrades) / float64(closed)
	}

	if len(result.EquityCurve) < 2 {
		return
	}

	result.TotalReturn = (result.FinalEquity - result.InitialCapital) / result.InitialCapital

	years := result.EndDate.Sub(result.StartDate).Hours() / 24 / 365.25
	if years > 0 {
		result.AnnualizedReturn = result.TotalReturn / years
		result.CAGR = math.Pow(result.FinalEquity/result.InitialCapital, 1/years) - 1
	}

	dailyReturns := make([]float64, 0, len(result.EquityCurve)-1)
	for i := 1; i < len(result.EquityCurve); i++ {
		prev := result.EquityCurve[i-1].Equity
		if prev <= 0 {
			continue
		}
		dailyReturns = append(dailyReturns, (result.EquityCurve[i].Equity-prev)/prev)
	}

	result.Volatility = stddev(dailyReturns) * math.Sqrt(252)
	if result.Volatility > 0 {
		result.SharpeRatio = result.AnnualizedReturn / result.Volatility
	}

	var downside []float64
	for _, r := range dailyReturns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if dd := stddev(downside) * math.Sqrt(252); dd > 0 {
		result.SortinoRatio = result.AnnualizedReturn / dd
	}

	result.MaxDrawdown = maxDrawdown(result.EquityCurve)
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))

	return math.Sqrt(variance)
}

func maxDrawdown(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}

	maxDD := 0.0
	peak := curve[0].Equity
	for _, point := range curve {
		if point.Equity > peak {
			peak = point.Equity
		}
		if peak > 0 {
			if dd := (peak - point.Equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}
