package handlers

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/undercover-social/backend/internal/domain"
	"github.com/undercover-social/backend/internal/messages"
)

func init() {
	Register("post-events", "POST_COMMENTED", handlePostCommented)
}

// postEnv is the envelope the feed CRUD service publishes for post events.
// Aliases are the anonymous identities shown to other users; real usernames
// never appear in notifications.
type postEnv struct {
	EventType  string `json:"eventType"`
	PostID     string `json:"postId"`
	AuthorID   string `json:"authorId"`
	ActorID    string `json:"actorId"`
	ActorAlias string `json:"actorAlias"`
	Excerpt    string `json:"excerpt"`
}

func handlePostCommented(data []byte) *domain.DeliveryEvent {
	var env postEnv
	if err := json.Unmarshal(data, &env); err != nil {
		return nil
	}

	postID, ok := parseID(env.PostID)
	if !ok {
		return nil
	}
	authorID, ok := parseID(env.AuthorID)
	if !ok {
		return nil
	}
	actorID, hasActor := parseID(env.ActorID)

	// Commenting on your own post notifies nobody.
	if hasActor && actorID == authorID {
		return nil
	}

	title, body := messages.PostCommented(env.ActorAlias, env.Excerpt)
	input := domain.DeliveryInput{
		Title:         title,
		Body:          body,
		Type:          domain.TypeComment,
		ResourceID:    &postID,
		ResourceModel: domain.ResourcePost,
		URL:           "/posts/" + postID.String(),
	}
	if hasActor {
		input.Sender = &actorID
	}

	return &domain.DeliveryEvent{
		Input:   input,
		Targets: []uuid.UUID{authorID},
	}
}
