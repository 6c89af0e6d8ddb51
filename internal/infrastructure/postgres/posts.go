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

// PostRepository is the PostgreSQL implementation of domain.PostRepository.
// Likes live in a post_likes table with a (post_id, user_id) unique key, so
// the idempotence check and the expiry extension happen in one statement —
// concurrent likes from different users cannot lose updates.
type PostRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository creates a postgres PostRepository.
func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postColumns = `id, user_id, expires_at, is_pinned, pinned_until, pinned_by, created_at`

// Get fetches a post and its like set.
func (r *PostRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	post, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadLikes(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// AddLike inserts the like if absent and extends expires_at only when the
// insert actually happened.
func (r *PostRepository) AddLike(ctx context.Context, postID, userID uuid.UUID, extendBy time.Duration) (*domain.Post, bool, error) {
	tag, err := r.pool.Exec(ctx, `
		WITH ins AS (
			INSERT INTO post_likes (post_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (post_id, user_id) DO NOTHING
			RETURNING post_id
		)
		UPDATE posts
		SET expires_at = expires_at + make_interval(secs => $3)
		WHERE id = $1 AND EXISTS (SELECT 1 FROM ins)
	`, postID, userID, extendBy.Seconds())
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, false, fmt.Errorf("post %s: %w", postID, domain.ErrNotFound)
		}
		return nil, false, fmt.Errorf("add like: %w", err)
	}
	extended := tag.RowsAffected() > 0

	post, err := r.Get(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	return post, extended, nil
}

// Pin updates the pin fields. A timed pin raises expires_at to at least the
// requested horizon; an indefinite pin (until == nil) overwrites it.
func (r *PostRepository) Pin(ctx context.Context, id, adminID uuid.UUID, until *time.Time, expiresAt time.Time) (*domain.Post, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE posts
		SET is_pinned = TRUE,
		    pinned_until = $2,
		    pinned_by = $3,
		    expires_at = CASE
		        WHEN $2::timestamptz IS NULL THEN $4
		        ELSE GREATEST(expires_at, $4)
		    END
		WHERE id = $1
		RETURNING `+postColumns, id, until, adminID, expiresAt)

	post, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadLikes(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Unpin clears the pin and overwrites expires_at with the caller-computed
// default horizon. pinned_by is kept for the audit trail.
func (r *PostRepository) Unpin(ctx context.Context, id uuid.UUID, expiresAt time.Time) (*domain.Post, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE posts
		SET is_pinned = FALSE,
		    pinned_until = NULL,
		    expires_at = $2
		WHERE id = $1
		RETURNING `+postColumns, id, expiresAt)

	post, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadLikes(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) loadLikes(ctx context.Context, post *domain.Post) error {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, created_at FROM post_likes
		WHERE post_id = $1
		ORDER BY created_at
	`, post.ID)
	if err != nil {
		return fmt.Errorf("load likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var like domain.Like
		if err := rows.Scan(&like.User, &like.CreatedAt); err != nil {
			return fmt.Errorf("scan like: %w", err)
		}
		post.Likes = append(post.Likes, like)
	}
	return rows.Err()
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(&p.ID, &p.User, &p.ExpiresAt, &p.IsPinned, &p.PinnedUntil, &p.PinnedBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &p, nil
}
