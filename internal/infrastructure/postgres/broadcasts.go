package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/undercover-social/backend/internal/domain"
)

// BroadcastRepository is the PostgreSQL implementation of
// domain.BroadcastRepository. Status transitions are guarded in SQL on the
// current status, which is what makes the scheduled → sent/failed edges
// fire at most once.
type BroadcastRepository struct {
	pool *pgxpool.Pool
}

// NewBroadcastRepository creates a postgres BroadcastRepository.
func NewBroadcastRepository(pool *pgxpool.Pool) *BroadcastRepository {
	return &BroadcastRepository{pool: pool}
}

const broadcastColumns = `id, title, body, target_group, target_users, scheduled_for, sent_at, status, created_by, created_at`

// Create inserts a broadcast record.
func (r *BroadcastRepository) Create(ctx context.Context, b *domain.BroadcastNotification) (*domain.BroadcastNotification, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO broadcast_notifications
			(title, body, target_group, target_users, scheduled_for, sent_at, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+broadcastColumns,
		b.Title, b.Body, string(b.TargetGroup), b.TargetUsers,
		b.ScheduledFor, b.SentAt, string(b.Status), b.CreatedBy)

	return scanBroadcast(row)
}

// Get fetches a broadcast by ID.
func (r *BroadcastRepository) Get(ctx context.Context, id uuid.UUID) (*domain.BroadcastNotification, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+broadcastColumns+` FROM broadcast_notifications WHERE id = $1`, id)
	return scanBroadcast(row)
}

// MarkSent transitions scheduled → sent. Returns false when the broadcast
// was already terminal.
func (r *BroadcastRepository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE broadcast_notifications
		SET status = $1, sent_at = $2
		WHERE id = $3 AND status = $4
	`, string(domain.StatusSent), sentAt, id, string(domain.StatusScheduled))
	if err != nil {
		return false, fmt.Errorf("mark broadcast sent: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkFailed transitions scheduled → failed, sent_at stays unset.
func (r *BroadcastRepository) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE broadcast_notifications
		SET status = $1
		WHERE id = $2 AND status = $3
	`, string(domain.StatusFailed), id, string(domain.StatusScheduled))
	if err != nil {
		return false, fmt.Errorf("mark broadcast failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns broadcasts newest-first.
func (r *BroadcastRepository) List(ctx context.Context, limit int) ([]*domain.BroadcastNotification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+broadcastColumns+`
		FROM broadcast_notifications
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list broadcasts: %w", err)
	}
	defer rows.Close()

	return collectBroadcasts(rows)
}

// ListScheduled returns all broadcasts still in status scheduled, oldest
// first so rearming preserves fire order.
func (r *BroadcastRepository) ListScheduled(ctx context.Context) ([]*domain.BroadcastNotification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+broadcastColumns+`
		FROM broadcast_notifications
		WHERE status = $1
		ORDER BY scheduled_for
	`, string(domain.StatusScheduled))
	if err != nil {
		return nil, fmt.Errorf("list scheduled broadcasts: %w", err)
	}
	defer rows.Close()

	return collectBroadcasts(rows)
}

func collectBroadcasts(rows pgx.Rows) ([]*domain.BroadcastNotification, error) {
	var results []*domain.BroadcastNotification
	for rows.Next() {
		b, err := scanBroadcast(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

func scanBroadcast(row pgx.Row) (*domain.BroadcastNotification, error) {
	var b domain.BroadcastNotification
	err := row.Scan(&b.ID, &b.Title, &b.Body, &b.TargetGroup, &b.TargetUsers,
		&b.ScheduledFor, &b.SentAt, &b.Status, &b.CreatedBy, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan broadcast: %w", err)
	}
	return &b, nil
}
