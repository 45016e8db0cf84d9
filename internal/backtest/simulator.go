package backtest

import (
	"math"
	"time"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

// Simulator executes trades against an in-memory portfolio. All
// money amounts are dollars; quantities are whole shares.
type Simulator struct {
	logger *logger.Logger

	cash      float64
	positions map[string]*position
	trades    []Trade

	totalTrades   int
	winningTrades int
	losingTrades  int
	totalCosts    float64
}

type position struct {
	shares    int
	costBasis float64
}

// Trade is one simulated fill
type Trade struct {
	Date      time.Time           `json:"date"`
	Ticker    string              `json:"ticker"`
	Side      contracts.OrderSide `json:"side"`
	Shares    int                 `json:"shares"`
	Price     float64             `json:"price"`
	Value     float64             `json:"value"`
	Cost      float64             `json:"cost"`
	PnL       float64             `json:"pnl,omitempty"`
	ReturnPct float64             `json:"return_pct,omitempty"`
}

// Stats summarizes the trades executed in a simulation
type Stats struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	TotalCosts    float64
}

// NewSimulator creates a new trade simulator
func NewSimulator(log *logger.Logger) *Simulator {
	return &Simulator{
		logger:    log,
		positions: make(map[string]*position),
	}
}

// Initialize resets the portfolio to cash-only
func (s *Simulator) Initialize(capital float64) {
	s.cash = capital
	s.positions = make(map[string]*position)
	s.trades = nil
	s.totalTrades = 0
	s.winningTrades = 0
	s.losingTrades = 0
	s.totalCosts = 0
}

// Equity returns cash plus positions marked to the given prices.
// A position without a current price is carried at cost.
func (s *Simulator) Equity(prices map[string]float64) float64 {
	equity := s.cash
	for ticker, pos := range s.positions {
		if price, ok := prices[ticker]; ok {
			equity += float64(pos.shares) * price
		} else {
			equity += pos.costBasis
		}
	}
	return equity
}

// Rebalance closes positions that fell out of the pick list and moves
// the survivors and new picks toward an equal-weight target, capped
// per position. Returns the number of trades executed.
func (s *Simulator) Rebalance(date time.Time, picks []string, prices map[string]float64, maxPositionPct, costRate float64) int {
	executed := 0

	inPicks := make(map[string]bool, len(picks))
	for _, ticker := range picks {
		inPicks[ticker] = true
	}

	for ticker, pos := range s.positions {
		if inPicks[ticker] {
			continue
		}
		price, ok := prices[ticker]
		if !ok {
			continue
		}
		if s.sell(date, ticker, pos.shares, price, costRate) {
			executed++
		}
	}

	if len(picks) == 0 {
		return executed
	}

	equity := s.Equity(prices)
	allocation := math.Min(maxPositionPct, 1.0/float64(len(picks)))
	target := equity * allocation

	for _, ticker := range picks {
		price, ok := prices[ticker]
		if !ok || price <= 0 {
			continue
		}

		targetShares := int(target / price)
		current := 0
		if pos, exists := s.positions[ticker]; exists {
			current = pos.shares
		}

		diff := targetShares - current
		switch {
		case diff > 0:
			if s.buy(date, ticker, diff, price, costRate) {
				executed++
			}
		case diff < 0:
			if s.sell(date, ticker, -diff, price, costRate) {
				executed++
			}
		}
	}

	return executed
}

// Stats returns the trade statistics accumulated since Initialize
func (s *Simulator) Stats() Stats {
	return Stats{
		TotalTrades:   s.totalTrades,
		WinningTrades: s.winningTrades,
		LosingTrades:  s.losingTrades,
		TotalCosts:    s.totalCosts,
	}
}

// Trades returns every fill in execution order
func (s *Simulator) Trades() []Trade {
	return s.trades
}

func (s *Simulator) buy(date time.Time, ticker string, shares int, price, costRate float64) bool {
	if shares <= 0 || price <= 0 {
		return false
	}

	// Shrink to what the cash can cover, fees included
	affordable := int(s.cash / (price * (1 + costRate)))
	if shares > affordable {
		shares = affordable
	}
	if shares <= 0 {
		return false
	}

	value := float64(shares) * price
	cost := value * costRate
	s.cash -= value + cost

	pos, exists := s.positions[ticker]
	if !exists {
		pos = &position{}
		s.positions[ticker] = pos
	}
	pos.shares += shares
	pos.costBasis += value + cost

	s.record(Trade{
		Date: date, Ticker: ticker, Side: contracts.OrderSideBuy,
		Shares: shares, Price: price, Value: value, Cost: cost,
	}, cost)

	return true
}

func (s *Simulator) sell(date time.Time, ticker string, shares int, price, costRate float64) bool {
	pos, exists := s.positions[ticker]
	if !exists || shares <= 0 || price <= 0 {
		return false
	}
	if shares > pos.shares {
		shares = pos.shares
	}

	value := float64(shares) * price
	cost := value * costRate
	proceeds := value - cost
	basisShare := pos.costBasis * float64(shares) / float64(pos.shares)
	pnl := proceeds - basisShare

	s.cash += proceeds
	pos.shares -= shares
	pos.costBasis -= basisShare
	if pos.shares == 0 {
		delete(s.positions, ticker)
	}

	if pnl > 0 {
		s.winningTrades++
	} else if pnl < 0 {
		s.losingTrades++
	}

	trade := Trade{
		Date: date, Ticker: ticker, Side: contracts.OrderSideSell,
		Shares: shares, Price: price, Value: value, Cost: cost,
		PnL: pnl,
	}
	if basisShare > 0 {
		trade.ReturnPct = pnl / basisShare
	}
	s.record(trade, cost)

	return true
}

func (s *Simulator) record(trade Trade, cost float64) {
	s.trades = append(s.trades, trade)
	s.totalTrades++
	s.totalCosts += cost

	s.logger.WithFields(map[string]interface{}{
		"ticker": trade.Ticker,
		"side":   trade.Side,
		"shares": trade.Shares,
		"price":  trade.Price,
	}).Debug("Simulated fill")
}
