package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/prepjet/prepjet/internal/model"
)

// CheckoutEventRepository provides database access for checkout events.
type CheckoutEventRepository struct {
	repo *Repository
}

// NewCheckoutEventRepository creates a new CheckoutEventRepository.
func NewCheckoutEventRepository(repo *Repository) *CheckoutEventRepository {
	return &CheckoutEventRepository{repo: repo}
}

// BulkInsert inserts checkout events with idempotency via ON CONFLICT DO NOTHING.
// The event_id (stream ID) is the idempotency key, so re-delivered batches
// are safe to replay.
func (r *CheckoutEventRepository) BulkInsert(ctx context.Context, events []*model.CheckoutEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO checkout_events (
			id, event_id, price_id, customer_email, status, requested_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.EventID,
			nullableString(event.PriceID),
			nullableString(event.CustomerEmail),
			event.Status,
			event.RequestedAt,
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert event %d: %w", i, err)
		}
	}

	return nil
}

// CountByStatus returns checkout attempt counts per status in a time range.
func (r *CheckoutEventRepository) CountByStatus(ctx context.Context, from, to time.Time) (map[model.CheckoutStatus]int64, error) {
	query := `
		SELECT status, COUNT(*)
		FROM checkout_events
		WHERE requested_at >= $1 AND requested_at < $2
		GROUP BY status
	`

	rows, err := r.repo.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query checkout counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.CheckoutStatus]int64)
	for rows.Next() {
		var status model.CheckoutStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan checkout count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

// ListRecent returns the most recent checkout events, newest first.
func (r *CheckoutEventRepository) ListRecent(ctx context.Context, limit int) ([]*model.CheckoutEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT id, event_id, COALESCE(price_id, ''), COALESCE(customer_email, ''), status, requested_at, created_at
		FROM checkout_events
		ORDER BY requested_at DESC
		LIMIT $1
	`

	rows, err := r.repo.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent checkout events: %w", err)
	}
	defer rows.Close()

	var events []*model.CheckoutEvent
	for rows.Next() {
		var event model.CheckoutEvent
		err := rows.Scan(
			&event.ID,
			&event.EventID,
			&event.PriceID,
			&event.CustomerEmail,
			&event.Status,
			&event.RequestedAt,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan checkout event: %w", err)
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

// nullableString returns nil for empty strings.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
