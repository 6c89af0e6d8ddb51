package handlers

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/undercover-social/backend/internal/domain"
	"github.com/undercover-social/backend/internal/messages"
)

func init() {
	Register("whisper-events", "WHISPER_RECEIVED", handleWhisperReceived)
}

func handleWhisperReceived(data []byte) *domain.DeliveryEvent {
	var env struct {
		EventType   string `json:"eventType"`
		WhisperID   string `json:"whisperId"`
		SenderID    string `json:"senderId"`
		SenderAlias string `json:"senderAlias"`
		RecipientID string `json:"recipientId"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}

	recipientID, ok := parseID(env.RecipientID)
	if !ok {
		return nil
	}
	whisperID, hasWhisper := parseID(env.WhisperID)
	senderID, hasSender := parseID(env.SenderID)

	title, body := messages.WhisperReceived(env.SenderAlias)
	input := domain.DeliveryInput{
		Title: title,
		Body:  body,
		Type:  domain.TypeWhisper,
		URL:   "/whispers",
	}
	if hasWhisper {
		input.ResourceID = &whisperID
		input.ResourceModel = domain.ResourceWhisper
	}
	if hasSender {
		input.Sender = &senderID
	}

	return &domain.DeliveryEvent{
		Input:   input,
		Targets: []uuid.UUID{recipientID},
	}
}
