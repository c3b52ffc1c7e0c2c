package handlers

import (
	"strings"
	"testing"
)

func TestGenerateChatTitle(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "cuts at first sentence terminator",
			message: "Can you explain recursion? It's confusing.",
			want:    "Can you explain recursion",
		},
		{
			name:    "short message kept whole",
			message: "What is a binary search tree",
			want:    "What is a binary search tree",
		},
		{
			name:    "collapses whitespace",
			message: "  explain\n\tmerge   sort  ",
			want:    "explain merge sort",
		},
		{
			name:    "long message truncated with ellipsis",
			message: strings.Repeat("a", 80),
			want:    strings.Repeat("a", 47) + "...",
		},
		{
			name:    "whitespace only falls back to placeholder",
			message: "   \n\t  ",
			want:    "Untitled Chat",
		},
		{
			name:    "leading terminator falls back to placeholder",
			message: "?!",
			want:    "Untitled Chat",
		},
		{
			name:    "exclamation terminates",
			message: "Help me! I have an exam tomorrow",
			want:    "Help me",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := generateChatTitle(tt.message)
			if got != tt.want {
				t.Errorf("generateChatTitle(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

func TestIsDefaultChatTitle(t *testing.T) {
	for _, title := range []string{"Untitled Chat", "New Chat"} {
		if !isDefaultChatTitle(title) {
			t.Errorf("expected %q to be a default title", title)
		}
	}
	if isDefaultChatTitle("Recursion basics") {
		t.Error("expected derived title not to be a default title")
	}
}
