package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphaframe/alphaframe/internal/contracts"
)

// Repository persists order requests and their broker results.
// A nil pool turns every method into a no-op.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new execution repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveOrder records an order request and, if present, its result
func (r *Repository) SaveOrder(ctx context.Context, req *contracts.OrderRequest, result *contracts.OrderResult) error {
	if r.pool == nil {
		return nil
	}

	var orderID string
	var submittedAt *time.Time
	if result != nil {
		orderID = result.OrderID
		submittedAt = &result.SubmittedAt
	}

	query := `
		INSERT INTO order_log (
			ticker, side, quantity, stop_loss_price, take_profit_price,
			dry_run, status, order_id, created_at, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		req.Ticker, string(req.Side), req.Quantity, req.StopLossPrice, req.TakeProfitPrice,
		req.DryRun, string(req.Status), orderID, req.CreatedAt, submittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

// SaveRejection records a sizing rejection so the guardrail history
// is queryable alongside the order log
func (r *Repository) SaveRejection(ctx context.Context, rejection *contracts.RiskRejection) error {
	if r.pool == nil {
		return nil
	}

	query := `
		INSERT INTO risk_rejections (ticker, reason, detail, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, rejection.Ticker, rejection.Reason, rejection.Detail, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save rejection: %w", err)
	}

	return nil
}

// GetOrders retrieves the most recent order log entries
func (r *Repository) GetOrders(ctx context.Context, limit int) ([]contracts.OrderRequest, error) {
	if r.pool == nil {
		return []contracts.OrderRequest{}, nil
	}

	query := `
		SELECT ticker, side, quantity, stop_loss_price, take_profit_price,
		       dry_run, status, created_at
		FROM order_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]contracts.OrderRequest, 0)
	for rows.Next() {
		var o contracts.OrderRequest
		var side, status string
		err := rows.Scan(&o.Ticker, &side, &o.Quantity, &o.StopLossPrice, &o.TakeProfitPrice,
			&o.DryRun, &status, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		o.Side = contracts.OrderSide(side)
		o.Status = contracts.OrderStatus(status)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return orders, nil
}

// CountTradesOn returns how many non-dry-run orders were submitted
// on the given calendar day. Used to seed the daily counter after a
// process restart.
func (r *Repository) CountTradesOn(ctx context.Context, day time.Time) (int, error) {
	if r.pool == nil {
		return 0, nil
	}

	query := `
		SELECT COUNT(*)
		FROM order_log
		WHERE dry_run = false
		  AND status = $1
		  AND submitted_at >= $2
		  AND submitted_at < $3
	`

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var count int
	err := r.pool.QueryRow(ctx, query, string(contracts.OrderStatusSubmitted), start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trades: %w", err)
	}

	return count, nil
}
