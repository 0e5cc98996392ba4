// Package proxy implements the OpenAI-compatible completion endpoint.
package proxy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"

	"github.com/gemrelay/gemrelay/internal/metrics"
	"github.com/gemrelay/gemrelay/internal/pool"
	"github.com/gemrelay/gemrelay/internal/storage"
	"github.com/gemrelay/gemrelay/internal/tokenizer"
	"github.com/gemrelay/gemrelay/internal/types"
	"github.com/gemrelay/gemrelay/internal/upstream"
)

// Handlers holds the dependencies for proxy HTTP handlers.
type Handlers struct {
	Pool         *pool.Pool
	Upstream     *upstream.Client
	Metrics      *metrics.Registry
	Storage      storage.Storage
	Tokenizer    tokenizer.Tokenizer
	Cache        *ristretto.Cache[string, *types.ChatCompletionResponse]
	CacheTTL     time.Duration
	DefaultModel string
}

// New creates a new instance of proxy handlers. Storage, Tokenizer and
// Cache may be nil; the handler degrades to proxying without logging
// or caching.
func New(p *pool.Pool, up *upstream.Client, reg *metrics.Registry, store storage.Storage, tok tokenizer.Tokenizer, cache *ristretto.Cache[string, *types.ChatCompletionResponse], cacheTTL time.Duration, defaultModel string) *Handlers {
	return &Handlers{
		Pool:         p,
		Upstream:     up,
		Metrics:      reg,
		Storage:      store,
		Tokenizer:    tok,
		Cache:        cache,
		CacheTTL:     cacheTTL,
		DefaultModel: defaultModel,
	}
}

// outcomeFor maps an upstream result kind to a pool outcome report.
func outcomeFor(kind upstream.Kind) pool.Outcome {
	switch kind {
	case upstream.Success:
		return pool.OutcomeSuccess
	case upstream.RateLimited:
		return pool.OutcomeRateLimited
	default:
		return pool.OutcomeError
	}
}

// cacheKey derives a lookup key from everything that shapes the completion.
func cacheKey(model, promptText string, req *types.ChatCompletionRequest) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s", model, promptText)
	if req.Temperature != nil {
		fmt.Fprintf(h, "\x00t=%g", *req.Temperature)
	}
	if req.MaxTokens != nil {
		fmt.Fprintf(h, "\x00m=%d", *req.MaxTokens)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// updateDailyUsage updates the daily usage aggregate for a request.
func (h *Handlers) updateDailyUsage(credentialID, model string, status, promptTokens, completionTokens int) {
	errorCount := 0
	if status >= 400 {
		errorCount = 1
	}

	usage := &storage.DailyUsage{
		Date:             time.Now().Format("2006-01-02"),
		CredentialID:     credentialID,
		Model:            model,
		RequestCount:     1,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		ErrorCount:       errorCount,
	}

	_ = h.Storage.UpdateDailyUsage(usage)
}

// logChatRequest persists a request log entry and usage aggregate.
// Token counts come from the tokenizer for accounting accuracy; the
// response body carries the cheaper whitespace estimate.
func (h *Handlers) logChatRequest(requestID, credentialID, model, promptText, completionText, errorMessage string, status int, startTime time.Time) {
	if h.Storage == nil {
		return
	}

	promptTokens := 0
	completionTokens := 0
	if h.Tokenizer != nil {
		if n, err := h.Tokenizer.CountTokens(promptText, model); err == nil {
			promptTokens = n
		}
		if n, err := h.Tokenizer.CountTokens(completionText, model); err == nil {
			completionTokens = n
		}
	}

	log := &storage.RequestLog{
		ID:               uuid.New().String(),
		RequestID:        requestID,
		CredentialID:     credentialID,
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		StatusCode:       status,
		ErrorMessage:     errorMessage,
		DurationMs:       time.Since(startTime).Milliseconds(),
		CreatedAt:        time.Now(),
	}
	_ = h.Storage.LogRequest(log)

	h.updateDailyUsage(credentialID, model, status, promptTokens, completionTokens)
}
