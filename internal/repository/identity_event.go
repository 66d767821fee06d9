package repository

import (
	"context"
	"fmt"
)

// MarkIdentityEventProcessed records a processed sync event ID and reports
// whether this call was the first to record it. Re-deliveries return false
// and must be acknowledged without side effects.
func (r *Repository) MarkIdentityEventProcessed(ctx context.Context, eventID string) (bool, error) {
	query := `
		INSERT INTO processed_webhook_events (event_id, processed_at)
		VALUES ($1, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	result, err := r.pool.Exec(ctx, query, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to mark event processed: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// UnmarkIdentityEventProcessed removes a processed-event record so a
// redelivery can be applied after a failed upsert.
func (r *Repository) UnmarkIdentityEventProcessed(ctx context.Context, eventID string) error {
	query := `DELETE FROM processed_webhook_events WHERE event_id = $1`

	if _, err := r.pool.Exec(ctx, query, eventID); err != nil {
		return fmt.Errorf("failed to unmark event: %w", err)
	}
	return nil
}
