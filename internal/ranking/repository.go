package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphaframe/alphaframe/internal/contracts"
)

// Repository persists ranking snapshots. A nil pool is tolerated so
// runs without a database keep working; every method becomes a no-op
// or returns empty results.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new ranking repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveSnapshot replaces the ranking rows for the run date
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot contracts.RankingSnapshot) error {
	if r.pool == nil {
		return nil
	}

	date := snapshot.RunAt.Truncate(24 * time.Hour)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM ranking_snapshots WHERE rank_date = $1", date)
	if err != nil {
		return fmt.Errorf("failed to delete old snapshot: %w", err)
	}

	query := `
		INSERT INTO ranking_snapshots (
			ticker, rank_date, run_at, rank, composite_score,
			technical_score, sentiment_score, headline_count, price
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, a := range snapshot.Assets {
		_, err := tx.Exec(ctx, query,
			a.Ticker, date, snapshot.RunAt, a.Rank, a.CompositeScore,
			a.TechnicalScore, a.SentimentScore, a.HeadlineCount, a.Price,
		)
		if err != nil {
			return fmt.Errorf("failed to insert ranking row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSnapshot retrieves the ranking rows for a date in rank order
func (r *Repository) GetSnapshot(ctx context.Context, date time.Time, limit int) ([]contracts.RankedAsset, error) {
	if r.pool == nil {
		return []contracts.RankedAsset{}, nil
	}

	query := `
		SELECT ticker, rank, composite_score, technical_score,
		       sentiment_score, headline_count, price
		FROM ranking_snapshots
		WHERE rank_date = $1
		ORDER BY rank ASC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, date.Truncate(24*time.Hour), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking snapshot: %w", err)
	}
	defer rows.Close()

	results := make([]contracts.RankedAsset, 0)
	for rows.Next() {
		var a contracts.RankedAsset
		err := rows.Scan(
			&a.Ticker, &a.Rank, &a.CompositeScore, &a.TechnicalScore,
			&a.SentimentScore, &a.HeadlineCount, &a.Price,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// GetLatestRunAt returns the timestamp of the most recent persisted run
func (r *Repository) GetLatestRunAt(ctx context.Context) (time.Time, error) {
	if r.pool == nil {
		return time.Time{}, nil
	}

	// MAX over an empty table yields NULL, scan through a pointer
	var runAt *time.Time
	err := r.pool.QueryRow(ctx, "SELECT MAX(run_at) FROM ranking_snapshots").Scan(&runAt)
	if err == pgx.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest run: %w", err)
	}
	if runAt == nil {
		return time.Time{}, nil
	}

	return *runAt, nil
}
