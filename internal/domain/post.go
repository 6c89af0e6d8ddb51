package domain

import (
	"time"

	"github.com/google/uuid"
)

// PinDuration is the admin-selectable pin window.
type PinDuration string

const (
	PinDay        PinDuration = "day"
	PinWeek       PinDuration = "week"
	PinIndefinite PinDuration = "indefinite"
)

// Like is one entry in a post's append-only like set, unique per user.
type Like struct {
	User      uuid.UUID `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post carries the lifecycle fields this service owns. Content, media and
// comments belong to the feed CRUD service; only the identifier, the author
// and the four lifecycle fields are read or mutated here.
//
// ExpiresAt is the authoritative deletion horizon: the reaper hides the post
// once it passes. Likes and pins push it forward, unpin resets it.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	User        uuid.UUID  `json:"user"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	IsPinned    bool       `json:"isPinned"`
	PinnedUntil *time.Time `json:"pinnedUntil,omitempty"`
	PinnedBy    *uuid.UUID `json:"pinnedBy,omitempty"`
	Likes       []Like     `json:"likes"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// LikeCount returns the number of unique likers.
func (p *Post) LikeCount() int {
	return len(p.Likes)
}
