package handlers

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/undercover-social/backend/internal/domain"
)

func init() {
	RegisterDirect("notification-events", handleSystemNotification)
}

// handleSystemNotification delivers a fully-specified system notification
// published by another backend service. The message names its recipients
// directly; no eventType routing and no message catalog involved.
func handleSystemNotification(data []byte) *domain.DeliveryEvent {
	var cmd struct {
		Title   string   `json:"title"`
		Body    string   `json:"body"`
		URL     string   `json:"url"`
		Targets []string `json:"targets"`
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil
	}
	if cmd.Title == "" || cmd.Body == "" {
		return nil
	}

	targets := make([]uuid.UUID, 0, len(cmd.Targets))
	for _, t := range cmd.Targets {
		if id, ok := parseID(t); ok {
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	return &domain.DeliveryEvent{
		Input: domain.DeliveryInput{
			Title: cmd.Title,
			Body:  cmd.Body,
			Type:  domain.TypeSystem,
			URL:   cmd.URL,
		},
		Targets: targets,
	}
}
