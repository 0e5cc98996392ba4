package prompt

import (
	"strings"
	"testing"

	"github.com/gemrelay/gemrelay/internal/types"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		messages []types.Message
		want     string
	}{
		{
			name: "single user message",
			messages: []types.Message{
				types.NewTextMessage(types.RoleUser, "Hi"),
			},
			want: "User: Hi",
		},
		{
			name: "multi-turn conversation",
			messages: []types.Message{
				types.NewTextMessage(types.RoleSystem, "You are helpful."),
				types.NewTextMessage(types.RoleUser, "Hello"),
				types.NewTextMessage(types.RoleAssistant, "Hi there"),
				types.NewTextMessage(types.RoleUser, "How are you?"),
			},
			want: "System: You are helpful.\nUser: Hello\nAssistant: Hi there\nUser: How are you?",
		},
		{
			name: "unknown role passes through unlabeled",
			messages: []types.Message{
				types.NewTextMessage("tool", "raw output"),
			},
			want: "raw output",
		},
		{
			name: "structured content parts are concatenated",
			messages: []types.Message{
				{
					Role: types.RoleUser,
					Content: types.Content{Parts: []types.ContentPart{
						{Type: types.ContentTypeText, Text: "part one "},
						{Type: types.ContentTypeText, Text: "part two"},
					}},
				},
			},
			want: "User: part one part two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.messages)
			if got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPreservesOrder(t *testing.T) {
	messages := []types.Message{
		types.NewTextMessage(types.RoleUser, "first"),
		types.NewTextMessage(types.RoleAssistant, "second"),
		types.NewTextMessage(types.RoleUser, "third"),
	}

	got := Build(messages)
	lines := strings.Split(got, "\n")
	if len(lines) != len(messages) {
		t.Fatalf("expected %d lines, got %d", len(messages), len(lines))
	}
	for i, want := range []string{"User: first", "Assistant: second", "User: third"} {
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"Hello", 1},
		{"User: Hi", 2},
		{"one two three four", 4},
		{"tabs\tand\nnewlines count", 4},
	}

	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
