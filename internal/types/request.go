package types

// ChatCompletionRequest represents an OpenAI chat completion request.
// Optional fields use pointers to distinguish between unset and zero values.
type ChatCompletionRequest struct {
	// Required fields
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`

	// Sampling parameters
	Temperature *float64 `json:"temperature,omitempty"` // 0-2, default 1
	TopP        *float64 `json:"top_p,omitempty"`       // 0-1, default 1
	MaxTokens   *int     `json:"max_tokens,omitempty"`

	// End-user identifier, accepted but unused
	User string `json:"user,omitempty"`
}

// GetMaxTokens returns the max tokens limit, or 0 when unset.
func (r *ChatCompletionRequest) GetMaxTokens() int {
	if r.MaxTokens != nil {
		return *r.MaxTokens
	}
	return 0
}
