package contracts

import "time"

// OrderSide represents buy or sell
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// OrderStatus represents the lifecycle state of an order request
type OrderStatus string

const (
	OrderStatusProposed  OrderStatus = "PROPOSED"
	OrderStatusSubmitted OrderStatus = "SUBMITTED"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusDryRun    OrderStatus = "DRY_RUN"
)

// PositionProposal is the sized, risk-bounded trade for one pick.
// Quantity is whole shares; stop and take-profit bracket the entry.
type PositionProposal struct {
	Ticker              string    `json:"ticker"`
	Side                OrderSide `json:"side"`
	Quantity            int       `json:"quantity"`
	EntryReferencePrice float64   `json:"entry_reference_price"`
	StopLossPrice       float64   `json:"stop_loss_price"`
	TakeProfitPrice     float64   `json:"take_profit_price"`
	DryRun              bool      `json:"dry_run"`
}

// NotionalValue returns the dollar value of the proposal at entry
func (p *PositionProposal) NotionalValue() float64 {
	return float64(p.Quantity) * p.EntryReferencePrice
}

// RiskRejection is a typed sizing outcome, not an error. The run
// continues processing remaining picks after one is produced.
type RiskRejection struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Rejection reasons produced by position sizing
const (
	RejectDailyLimitExceeded = "daily_limit_exceeded"
	RejectInvalidEntryPrice  = "invalid_entry_price"
	RejectPositionTooSmall   = "position_too_small"
)

// OrderRequest is the shape handed to the execution collaborator.
// A request with DryRun set must never be forwarded to the broker.
type OrderRequest struct {
	Ticker          string      `json:"ticker"`
	Side            OrderSide   `json:"side"`
	Quantity        int         `json:"quantity"`
	StopLossPrice   float64     `json:"stop_loss_price"`
	TakeProfitPrice float64     `json:"take_profit_price"`
	DryRun          bool        `json:"dry_run"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
}

// OrderResult is the execution collaborator's response
type OrderResult struct {
	OrderID     string      `json:"order_id"`
	Status      OrderStatus `json:"status"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

// SizingOutcome pairs a top pick with its sizing result. Exactly one
// of Proposal and Rejection is set for picks that were sized; both
// are nil for assets below the sizing cutoff.
type SizingOutcome struct {
	Pick      TopPick           `json:"pick"`
	Proposal  *PositionProposal `json:"proposal,omitempty"`
	Rejection *RiskRejection    `json:"rejection,omitempty"`
}

// Accepted checks if the outcome carries a sized proposal
func (o *SizingOutcome) Accepted() bool {
	return o.Proposal != nil
}
