package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/undercover-social/backend/internal/domain"
)

// SubscriptionRepository is the PostgreSQL implementation of
// domain.SubscriptionRepository.
type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository creates a postgres SubscriptionRepository.
func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// Upsert creates or refreshes the (user, endpoint) record. A re-registered
// device comes back active even if it was previously reaped.
func (r *SubscriptionRepository) Upsert(ctx context.Context, userID uuid.UUID, endpoint string, keys domain.SubscriptionKeys) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (user_id, endpoint)
		DO UPDATE SET p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth, active = TRUE
	`, userID, endpoint, keys.P256dh, keys.Auth)
	if err != nil {
		return fmt.Errorf("upsert push subscription: %w", err)
	}
	return nil
}

// ListActiveByUser returns the user's active subscriptions.
func (r *SubscriptionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*domain.PushSubscription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, endpoint, p256dh, auth, active, created_at
		FROM push_subscriptions
		WHERE user_id = $1 AND active = TRUE
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var results []*domain.PushSubscription
	for rows.Next() {
		var s domain.PushSubscription
		if err := rows.Scan(&s.ID, &s.User, &s.Endpoint, &s.Keys.P256dh, &s.Keys.Auth, &s.Active, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		results = append(results, &s)
	}
	return results, rows.Err()
}

// Deactivate flips active to false, keeping the record.
func (r *SubscriptionRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE push_subscriptions SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate push subscription: %w", err)
	}
	return nil
}
