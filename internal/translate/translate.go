// Package translate maps upstream results onto the OpenAI-compatible
// wire shapes the gateway serves.
package translate

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gemrelay/gemrelay/internal/prompt"
	"github.com/gemrelay/gemrelay/internal/types"
	"github.com/gemrelay/gemrelay/internal/upstream"
)

// idPrefix matches the OpenAI chat completion id convention.
const idPrefix = "chatcmpl-"

// ToChatCompletion converts an upstream result into the outbound body and
// HTTP status:
//
//	Success     -> 200 ChatCompletionResponse
//	RateLimited -> 429 rate_limit_error
//	Failed      -> 500 upstream_error, or the upstream status passed
//	               through when it was a 4xx client-side error
//
// promptText is the flattened prompt that was sent upstream; the usage block
// is estimated from it and the generated text.
func ToChatCompletion(res upstream.Result, req *types.ChatCompletionRequest, promptText string) (any, int) {
	switch res.Kind {
	case upstream.Success:
		promptTokens := prompt.EstimateTokens(promptText)
		completionTokens := prompt.EstimateTokens(res.Text)

		return &types.ChatCompletionResponse{
			ID:      idPrefix + uuid.New().String(),
			Object:  types.ObjectChatCompletion,
			Created: time.Now().Unix(),
			Model:   req.Model,
			Choices: []types.Choice{
				{
					Index:        0,
					Message:      types.NewTextMessage(types.RoleAssistant, res.Text),
					FinishReason: types.FinishReasonStop,
				},
			},
			Usage: &types.Usage{
				PromptTokens:     promptTokens,
				CompletionTokens: completionTokens,
				TotalTokens:      promptTokens + completionTokens,
			},
		}, http.StatusOK

	case upstream.RateLimited:
		msg := res.Message
		if msg == "" {
			msg = "upstream quota exhausted"
		}
		return types.ErrRateLimit(msg), http.StatusTooManyRequests

	default:
		status := http.StatusInternalServerError
		// Client-side upstream errors keep their status so callers can
		// distinguish a rejected request from a gateway fault.
		if res.StatusCode >= 400 && res.StatusCode < 500 {
			status = res.StatusCode
		}
		msg := res.Message
		if msg == "" {
			msg = "upstream request failed"
		}
		return types.ErrUpstream(msg), status
	}
}
