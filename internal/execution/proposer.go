package execution

import (
	"time"

	"github.com/alphaframe/alphaframe/internal/contracts"
)

// ProposeOrder wraps a sized position into the shape the broker
// expects, stamping the dry-run flag. A dry-run request carries the
// DRY_RUN status and must never be submitted; the executor enforces
// the flag, callers cannot opt out.
func ProposeOrder(proposal *contracts.PositionProposal, dryRun bool) *contracts.OrderRequest {
	status := contracts.OrderStatusProposed
	if dryRun {
		status = contracts.OrderStatusDryRun
	}

	return &contracts.OrderRequest{
		Ticker:          proposal.Ticker,
		Side:            proposal.Side,
		Quantity:        proposal.Quantity,
		StopLossPrice:   proposal.StopLossPrice,
		TakeProfitPrice: proposal.TakeProfitPrice,
		DryRun:          dryRun,
		Status:          status,
		CreatedAt:       time.Now(),
	}
}
