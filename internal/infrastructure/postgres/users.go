package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserDirectory implements application.UserDirectory against the users
// table. Every call is a fresh query — scheduled broadcasts re-resolve
// their audience at fire time, so results are never cached here.
type UserDirectory struct {
	pool *pgxpool.Pool
}

// NewUserDirectory creates a postgres UserDirectory.
func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

// UserRecord is the admin-UI view of a user: the anonymous identity plus
// the account fields the broadcast form needs for specific targeting.
type UserRecord struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	AnonymousAlias string    `json:"anonymousAlias"`
	AvatarEmoji    string    `json:"avatarEmoji"`
	Role           string    `json:"role"`
}

// AllUserIDs returns a snapshot of every user ID, ordered by creation.
func (d *UserDirectory) AllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := d.pool.Query(ctx, `SELECT id FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListUsers returns the admin-facing user list.
func (d *UserDirectory) ListUsers(ctx context.Context) ([]*UserRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, username, email, anonymous_alias, avatar_emoji, role
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var results []*UserRecord
	for rows.Next() {
		var u UserRecord
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.AnonymousAlias, &u.AvatarEmoji, &u.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		results = append(results, &u)
	}
	return results, rows.Err()
}
