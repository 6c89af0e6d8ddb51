// Package messages holds the title/body catalog for per-event notifications.
// Builders return (title, body) pairs ready for fan-out.
package messages

import "fmt"

const (
	PostLikedTitle = "Someone liked your post"
	PostLikedBody  = "%s liked your post."

	PostCommentedTitle = "New comment on your post"
	PostCommentedBody  = "%s commented: %s"

	WhisperReceivedTitle = "New whisper"
	WhisperReceivedBody  = "%s sent you a whisper."
)

func PostLiked(alias string) (string, string) {
	if alias == "" {
		alias = "Someone"
	}
	return PostLikedTitle, fmt.Sprintf(PostLikedBody, alias)
}

func PostCommented(alias, excerpt string) (string, string) {
	if alias == "" {
		alias = "Someone"
	}
	return PostCommentedTitle, fmt.Sprintf(PostCommentedBody, alias, truncate(excerpt, 80))
}

func WhisperReceived(alias string) (string, string) {
	if alias == "" {
		alias = "Someone"
	}
	return WhisperReceivedTitle, fmt.Sprintf(WhisperReceivedBody, alias)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
