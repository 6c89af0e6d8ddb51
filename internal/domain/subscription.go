package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionKeys are the client-generated Web Push encryption keys. They
// are opaque to this service and handed as-is to the push transport.
type SubscriptionKeys struct {
	P256dh string `json:"p256dh"`
	Auth   string `json:"auth"`
}

// PushSubscription is one browser/device push endpoint for a user, unique
// per (user, endpoint). Subscriptions are deactivated when the endpoint
// reports itself gone, never hard-deleted.
type PushSubscription struct {
	ID        uuid.UUID        `json:"id"`
	User      uuid.UUID        `json:"user"`
	Endpoint  string           `json:"endpoint"`
	Keys      SubscriptionKeys `json:"keys"`
	Active    bool             `json:"active"`
	CreatedAt time.Time        `json:"createdAt"`
}
