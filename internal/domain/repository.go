package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PostRepository is the port for the lifecycle fields of posts. The feed
// CRUD service owns everything else about a post. Mutations are atomic at
// the storage layer so concurrent likes from different users never lose
// updates.
type PostRepository interface {
	// Get fetches a post with its like set. Returns ErrNotFound for an
	// unknown identifier.
	Get(ctx context.Context, id uuid.UUID) (*Post, error)

	// AddLike appends (post, user) to the like set if absent and, only when
	// the like is new, pushes ExpiresAt forward by extendBy from its current
	// value. Insert and extension happen in one statement. extended reports
	// whether this call was the user's first like on the post.
	AddLike(ctx context.Context, postID, userID uuid.UUID, extendBy time.Duration) (post *Post, extended bool, err error)

	// Pin marks the post pinned by adminID. With until set, ExpiresAt is
	// raised to max(ExpiresAt, expiresAt); with until nil (indefinite pin)
	// ExpiresAt is overwritten with expiresAt.
	Pin(ctx context.Context, id, adminID uuid.UUID, until *time.Time, expiresAt time.Time) (*Post, error)

	// Unpin clears the pin fields and overwrites ExpiresAt with expiresAt,
	// regardless of any like-driven extensions.
	Unpin(ctx context.Context, id uuid.UUID, expiresAt time.Time) (*Post, error)
}

// BroadcastRepository persists admin broadcasts.
type BroadcastRepository interface {
	Create(ctx context.Context, b *BroadcastNotification) (*BroadcastNotification, error)

	// Get fetches a broadcast by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id uuid.UUID) (*BroadcastNotification, error)

	// MarkSent transitions scheduled → sent and stamps sentAt. The update is
	// guarded on the current status, so a second call is a no-op returning
	// false.
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error)

	// MarkFailed transitions scheduled → failed, leaving sentAt unset.
	// Guarded the same way as MarkSent.
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)

	// List returns broadcasts newest-first, up to limit.
	List(ctx context.Context, limit int) ([]*BroadcastNotification, error)

	// ListScheduled returns all broadcasts still in status scheduled.
	ListScheduled(ctx context.Context) ([]*BroadcastNotification, error)
}

// NotificationRepository persists per-recipient notifications.
type NotificationRepository interface {
	Create(ctx context.Context, userID uuid.UUID, input DeliveryInput) (*Notification, error)

	// ListByUser returns the recipient's notifications newest-first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Notification, error)

	// MarkRead flips the read flag on a notification owned by userID.
	// Returns ErrNotFound when the notification does not exist or belongs
	// to someone else.
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*Notification, error)

	// MarkAllRead marks every unread notification for the user as read and
	// returns how many were flipped.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// SubscriptionRepository persists push subscriptions.
type SubscriptionRepository interface {
	// Upsert creates or refreshes the (user, endpoint) record and reactivates
	// it if it had been reaped.
	Upsert(ctx context.Context, userID uuid.UUID, endpoint string, keys SubscriptionKeys) error

	// ListActiveByUser returns the user's active subscriptions. An empty
	// result is not an error.
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*PushSubscription, error)

	// Deactivate flips active to false. The record is kept.
	Deactivate(ctx context.Context, id uuid.UUID) error
}
