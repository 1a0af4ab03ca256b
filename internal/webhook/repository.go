package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository records processed webhook deliveries for idempotency.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new webhook repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RecordDelivery inserts the webhook message id. Returns false when the id
// was already processed, so redeliveries become no-ops.
func (r *Repository) RecordDelivery(ctx context.Context, messageID string) (bool, error) {
	query := `
		INSERT INTO webhook_deliveries (id, message_id, received_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (message_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, uuid.New(), messageID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to record webhook delivery: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// PruneDeliveries removes delivery records older than the retention window.
func (r *Repository) PruneDeliveries(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `DELETE FROM webhook_deliveries WHERE received_at < $1`

	tag, err := r.pool.Exec(ctx, query, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to prune webhook deliveries: %w", err)
	}
	return tag.RowsAffected(), nil
}
