package application

import (
	"context"

	"github.com/google/uuid"
)

// UserDirectory resolves broadcast audiences. The default implementation
// queries the users table; a fixed-list implementation is used for testing.
//
// Audience resolution must be a fresh snapshot on every call: scheduled
// broadcasts re-resolve at fire time, so users created after scheduling are
// included. Implementations must not cache.
type UserDirectory interface {
	// AllUserIDs returns every user ID in the system.
	AllUserIDs(ctx context.Context) ([]uuid.UUID, error)
}
