package handlers

import (
	"strings"

	"github.com/bhanu100141/StudyBuddy/internal/models"
)

// titleMaxLen caps generated chat titles; longer derivations are cut to
// titleTruncateAt characters plus an ellipsis.
const (
	titleMaxLen     = 50
	titleTruncateAt = 47
)

// defaultChatTitles are the placeholder titles a chat can carry before its
// title has been derived from a message. Compared by set membership, not
// scattered string literals.
var defaultChatTitles = map[string]struct{}{
	models.DefaultChatTitle: {},
	"New Chat":              {},
}

func isDefaultChatTitle(title string) bool {
	_, ok := defaultChatTitles[title]
	return ok
}

// generateChatTitle derives a chat title from the first user message:
// whitespace is collapsed, the text is cut at the first sentence terminator,
// and overlong results are truncated with an ellipsis. Falls back to the
// placeholder for empty input.
func generateChatTitle(message string) string {
	clean := strings.Join(strings.Fields(message), " ")

	if i := strings.IndexAny(clean, ".!?"); i >= 0 {
		clean = clean[:i]
	}

	runes := []rune(clean)
	if len(runes) > titleMaxLen {
		clean = string(runes[:titleTruncateAt]) + "..."
	}

	if clean == "" {
		return models.DefaultChatTitle
	}
	return clean
}
