package domain

import (
	"time"

	"github.com/google/uuid"
)

// TargetGroup selects how a broadcast's audience is resolved.
type TargetGroup string

const (
	// TargetAll resolves to every user ID in the directory at resolution
	// time, not at creation time.
	TargetAll TargetGroup = "all"
	// TargetSpecific uses the stored TargetUsers list verbatim. Unknown or
	// deleted IDs are skipped during delivery, never treated as errors.
	TargetSpecific TargetGroup = "specific"
)

// BroadcastStatus is the broadcast state machine. Transitions are one-way:
// scheduled → sent, scheduled → failed. Sent and failed are terminal.
type BroadcastStatus string

const (
	StatusScheduled BroadcastStatus = "scheduled"
	StatusSent      BroadcastStatus = "sent"
	StatusFailed    BroadcastStatus = "failed"
)

// BroadcastNotification is the admin-authored broadcast entity. Records are
// never deleted; history is the audit trail the admin UI reads.
type BroadcastNotification struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Body         string          `json:"body"`
	TargetGroup  TargetGroup     `json:"targetGroup"`
	TargetUsers  []uuid.UUID     `json:"targetUsers"`
	ScheduledFor *time.Time      `json:"scheduledFor,omitempty"`
	SentAt       *time.Time      `json:"sentAt,omitempty"`
	Status       BroadcastStatus `json:"status"`
	CreatedBy    uuid.UUID       `json:"createdBy"`
	CreatedAt    time.Time       `json:"createdAt"`
}
