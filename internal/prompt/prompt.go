// Package prompt flattens multi-turn chat conversations into the single
// prompt string the Gemini generateContent API expects.
package prompt

import (
	"strings"

	"github.com/gemrelay/gemrelay/internal/types"
)

// Role labels prepended to each message in the flattened prompt.
const (
	labelSystem    = "System: "
	labelUser      = "User: "
	labelAssistant = "Assistant: "
)

// Build flattens an ordered message list into one prompt string.
// Each message becomes a line prefixed with its role label; messages with
// an unknown role are passed through unlabeled. Order is preserved and no
// truncation is applied.
func Build(messages []types.Message) string {
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		content := msg.Content.String()
		switch msg.Role {
		case types.RoleSystem:
			parts = append(parts, labelSystem+content)
		case types.RoleUser:
			parts = append(parts, labelUser+content)
		case types.RoleAssistant:
			parts = append(parts, labelAssistant+content)
		default:
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n")
}

// EstimateTokens returns the whitespace-delimited word count of text.
// This is a rough approximation used only for the usage block of responses,
// never for quota decisions. Accounting-grade counts come from the tokenizer
// package.
func EstimateTokens(text string) int {
	return len(strings.Fields(text))
}
