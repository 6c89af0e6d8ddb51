package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies the event that produced a notification.
type NotificationType string

const (
	TypeLike      NotificationType = "like"
	TypeComment   NotificationType = "comment"
	TypeWhisper   NotificationType = "whisper"
	TypeSystem    NotificationType = "system"
	TypeBroadcast NotificationType = "broadcast"
)

// Resource models a notification may deep-link back to.
const (
	ResourcePost    = "Post"
	ResourceComment = "Comment"
	ResourceWhisper = "Whisper"
)

// Notification is one durable per-recipient record. It is created exactly
// once per (event × recipient) by the fan-out engine and mutated only to
// flip Read; it is never deleted by this service.
type Notification struct {
	ID            uuid.UUID        `json:"id"`
	User          uuid.UUID        `json:"user"`
	Title         string           `json:"title"`
	Body          string           `json:"body"`
	Type          NotificationType `json:"type"`
	Read          bool             `json:"read"`
	ResourceID    *uuid.UUID       `json:"resourceId,omitempty"`
	ResourceModel string           `json:"resourceModel,omitempty"`
	Sender        *uuid.UUID       `json:"sender,omitempty"`
	URL           string           `json:"url,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// DeliveryInput describes one logical notification before fan-out: the
// payload shared by every recipient and every device.
type DeliveryInput struct {
	Title         string
	Body          string
	Type          NotificationType
	ResourceID    *uuid.UUID
	ResourceModel string
	Sender        *uuid.UUID
	URL           string
}

// DeliveryEvent pairs a payload with its resolved recipients. Kafka handlers
// produce these; the fan-out engine consumes them.
type DeliveryEvent struct {
	Input   DeliveryInput
	Targets []uuid.UUID
}

// PushPayload is the wire shape serialized to every push endpoint and read
// by the browser service worker. Field names are part of that contract.
type PushPayload struct {
	Title string        `json:"title"`
	Body  string        `json:"body"`
	URL   string        `json:"url,omitempty"`
	Data  *Notification `json:"data"`
}
