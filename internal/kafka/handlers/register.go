package handlers

import (
	"github.com/google/uuid"

	"github.com/undercover-social/backend/internal/kafka/registry"
)

// Register is a convenience alias so each event source file calls
// Register(...) instead of registry.Register(...), keeping imports minimal.
func Register(topic, eventType string, h registry.EventHandler) {
	registry.Register(topic, eventType, h)
}

// RegisterDirect registers a handler for topics that don't use eventType
// routing.
func RegisterDirect(topic string, h registry.EventHandler) {
	registry.Register(topic, "", h)
}

// parseID parses a UUID field, reporting whether it was present and valid.
func parseID(s string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	return id, err == nil
}
