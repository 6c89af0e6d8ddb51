package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/undercover-social/backend/internal/domain"
)

// NotificationRepository is the PostgreSQL implementation of
// domain.NotificationRepository.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a postgres NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

const notificationColumns = `id, user_id, title, body, type, read, resource_id, resource_model, sender_id, url, created_at`

// Create inserts one per-recipient notification record.
func (r *NotificationRepository) Create(ctx context.Context, userID uuid.UUID, input domain.DeliveryInput) (*domain.Notification, error) {
	var resourceModel, url *string
	if input.ResourceModel != "" {
		resourceModel = &input.ResourceModel
	}
	if input.URL != "" {
		url = &input.URL
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, body, type, resource_id, resource_model, sender_id, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+notificationColumns,
		userID, input.Title, input.Body, string(input.Type),
		input.ResourceID, resourceModel, input.Sender, url)

	n, err := scanNotification(row)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return n, nil
}

// ListByUser returns the recipient's notifications newest-first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var results []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, n)
	}
	return results, rows.Err()
}

// MarkRead flips read on a notification owned by userID.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns, id, userID)

	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return n, nil
}

// MarkAllRead marks every unread notification for the user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE user_id = $1 AND read = FALSE
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	var resourceModel, url *string

	err := row.Scan(&n.ID, &n.User, &n.Title, &n.Body, &n.Type, &n.Read,
		&n.ResourceID, &resourceModel, &n.Sender, &url, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	if resourceModel != nil {
		n.ResourceModel = *resourceModel
	}
	if url != nil {
		n.URL = *url
	}
	return &n, nil
}
