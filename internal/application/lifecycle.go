package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/undercover-social/backend/internal/domain"
	"github.com/undercover-social/backend/internal/messages"
)

// Lifecycle windows. Engagement extends a post's life in fixed steps; pins
// override it; unpin resets it to the default window.
const (
	// DefaultTTL is the window a post gets at creation and again on unpin.
	DefaultTTL = 24 * time.Hour
	// LikeExtension is added to the current ExpiresAt for each new unique
	// like, compounding from the current horizon rather than from now.
	LikeExtension = time.Hour
	// IndefinitePinHorizon is the far-future sentinel for indefinite pins.
	IndefinitePinHorizon = 365 * 24 * time.Hour
)

// LifecycleService owns the expiration and pin transitions of posts.
type LifecycleService struct {
	posts  domain.PostRepository
	fanout *FanoutEngine
}

// NewLifecycleService creates a LifecycleService. fanout may be nil to skip
// like notifications (tests).
func NewLifecycleService(posts domain.PostRepository, fanout *FanoutEngine) *LifecycleService {
	return &LifecycleService{posts: posts, fanout: fanout}
}

// RecordLike appends userID to the post's like set and, if the like is new,
// extends ExpiresAt by LikeExtension. Idempotent per user: liking twice
// never double-extends. Returns the post's like count.
//
// A fresh like also notifies the post author; notification failures never
// fail the like.
func (s *LifecycleService) RecordLike(ctx context.Context, postID, userID uuid.UUID, likerAlias string) (int, error) {
	post, extended, err := s.posts.AddLike(ctx, postID, userID, LikeExtension)
	if err != nil {
		return 0, fmt.Errorf("record like on %s: %w", postID, err)
	}

	if extended {
		log.Debug().
			Str("post", postID.String()).
			Str("user", userID.String()).
			Time("expires_at", post.ExpiresAt).
			Msg("like extended post lifetime")
		s.notifyLiked(ctx, post, userID, likerAlias)
	}

	return post.LikeCount(), nil
}

func (s *LifecycleService) notifyLiked(ctx context.Context, post *domain.Post, likerID uuid.UUID, likerAlias string) {
	if s.fanout == nil || post.User == likerID {
		return
	}

	title, body := messages.PostLiked(likerAlias)
	resourceID := post.ID
	sender := likerID
	err := s.fanout.Deliver(ctx, domain.DeliveryInput{
		Title:         title,
		Body:          body,
		Type:          domain.TypeLike,
		ResourceID:    &resourceID,
		ResourceModel: domain.ResourcePost,
		Sender:        &sender,
		URL:           "/posts/" + post.ID.String(),
	}, []uuid.UUID{post.User})
	if err != nil {
		log.Warn().Err(err).Str("post", post.ID.String()).Msg("like notification not delivered")
	}
}

// Pin marks a post pinned for the given duration. Day and week pins set
// PinnedUntil and raise ExpiresAt to at least that instant, never shortening
// it. Indefinite pins clear PinnedUntil and push ExpiresAt a year out.
func (s *LifecycleService) Pin(ctx context.Context, postID, adminID uuid.UUID, duration domain.PinDuration) (*domain.Post, error) {
	now := time.Now()

	var until *time.Time
	var expiresAt time.Time
	switch duration {
	case domain.PinDay:
		t := now.Add(24 * time.Hour)
		until, expiresAt = &t, t
	case domain.PinWeek:
		t := now.Add(7 * 24 * time.Hour)
		until, expiresAt = &t, t
	case domain.PinIndefinite:
		expiresAt = now.Add(IndefinitePinHorizon)
	default:
		return nil, fmt.Errorf("%w: pin duration must be day, week or indefinite, got %q", domain.ErrInvalidArgument, duration)
	}

	post, err := s.posts.Pin(ctx, postID, adminID, until, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("pin %s: %w", postID, err)
	}

	log.Info().
		Str("post", postID.String()).
		Str("admin", adminID.String()).
		Str("duration", string(duration)).
		Time("expires_at", post.ExpiresAt).
		Msg("post pinned")

	return post, nil
}

// Unpin clears the pin and resets ExpiresAt to now + DefaultTTL, computed
// fresh. Like-driven extensions accumulated before or during the pin are
// discarded; the post starts over on the default window.
func (s *LifecycleService) Unpin(ctx context.Context, postID, adminID uuid.UUID) (*domain.Post, error) {
	post, err := s.posts.Unpin(ctx, postID, time.Now().Add(DefaultTTL))
	if err != nil {
		return nil, fmt.Errorf("unpin %s: %w", postID, err)
	}

	log.Info().
		Str("post", postID.String()).
		Str("admin", adminID.String()).
		Time("expires_at", post.ExpiresAt).
		Msg("post unpinned")

	return post, nil
}
