package risk

import "fmt"

// Parameters bound every sized position. Loaded once at startup and
// read-only for the lifetime of a run.
type Parameters struct {
	MaxRiskPerPositionPct float64 // dollar risk budget as a fraction of portfolio value
	MaxAllocationPct      float64 // per-position allocation cap as a fraction of portfolio value
	StopLossPct           float64
	TakeProfitPct         float64
	MaxTradesPerDay       int
}

// NewParameters validates and builds risk parameters. Invalid
// combinations are rejected at construction, never mid-run.
func NewParameters(maxRiskPct, maxAllocPct, stopLossPct, takeProfitPct float64, maxTradesPerDay int) (Parameters, error) {
	p := Parameters{
		MaxRiskPerPositionPct: maxRiskPct,
		MaxAllocationPct:      maxAllocPct,
		StopLossPct:           stopLossPct,
		TakeProfitPct:         takeProfitPct,
		MaxTradesPerDay:       maxTradesPerDay,
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// Validate checks that every bound is usable
func (p Parameters) Validate() error {
	if p.MaxRiskPerPositionPct <= 0 || p.MaxRiskPerPositionPct > 1 {
		return fmt.Errorf("max_risk_per_position_pct must be in (0, 1], got %.4f", p.MaxRiskPerPositionPct)
	}
	if p.MaxAllocationPct <= 0 || p.MaxAllocationPct > 1 {
		return fmt.Errorf("max_allocation_pct must be in (0, 1], got %.4f", p.MaxAllocationPct)
	}
	if p.StopLossPct <= 0 || p.StopLossPct >= 1 {
		return fmt.Errorf("stop_loss_pct must be in (0, 1), got %.4f", p.StopLossPct)
	}
	if p.TakeProfitPct <= 0 {
		return fmt.Errorf("take_profit_pct must be positive, got %.4f", p.TakeProfitPct)
	}
	if p.MaxTradesPerDay <= 0 {
		return fmt.Errorf("max_trades_per_day must be positive, got %d", p.MaxTradesPerDay)
	}
	return nil
}

// DefaultParameters returns the standard guardrails: 2% risk budget,
// 10% allocation cap, 5% stop, 15% take-profit, 10 trades per day.
func DefaultParameters() Parameters {
	return Parameters{
		MaxRiskPerPositionPct: 0.02,
		MaxAllocationPct:      0.10,
		StopLossPct:           0.05,
		TakeProfitPct:         0.15,
		MaxTradesPerDay:       10,
	}
}
