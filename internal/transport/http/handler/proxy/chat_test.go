package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/gemrelay/gemrelay/internal/metrics"
	"github.com/gemrelay/gemrelay/internal/pool"
	"github.com/gemrelay/gemrelay/internal/types"
	"github.com/gemrelay/gemrelay/internal/upstream"
)

// newTestHandlers wires a proxy handler against a fake upstream.
// Returns the handlers and a counter of upstream calls received.
func newTestHandlers(t *testing.T, upstreamHandler http.HandlerFunc) (*Handlers, *atomic.Int64) {
	t.Helper()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		upstreamHandler(w, r)
	}))
	t.Cleanup(srv.Close)

	p := pool.New([]pool.Entry{
		{ID: "cred-1", Key: "key-one"},
		{ID: "cred-2", Key: "key-two"},
	}, time.Minute)

	h := New(p, upstream.New(srv.URL, 5*time.Second), metrics.New(), nil, nil, nil, 0, "gemini-2.0-flash-exp")
	return h, &calls
}

func helloUpstream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{
			{
				"content":      map[string]any{"parts": []map[string]string{{"text": "Hello"}}},
				"finishReason": "STOP",
			},
		},
	})
}

func postChat(t *testing.T, h *Handlers, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ChatCompletions(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (message, errType string) {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	return body.Error.Message, body.Error.Type
}

func TestChatCompletionsSuccess(t *testing.T) {
	h, calls := newTestHandlers(t, helloUpstream)

	rec := postChat(t, h, `{"model":"gemini-2.0-flash-exp","messages":[{"role":"user","content":"Hi"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want 1", calls.Load())
	}

	var resp types.ChatCompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !strings.HasPrefix(resp.ID, "chatcmpl-") {
		t.Errorf("ID = %q, want chatcmpl- prefix", resp.ID)
	}
	if resp.Model != "gemini-2.0-flash-exp" {
		t.Errorf("Model = %q", resp.Model)
	}
	if got := resp.Choices[0].Message.Content.String(); got != "Hello" {
		t.Errorf("completion text = %q, want Hello", got)
	}
	// "User: Hi" flattens to 2 whitespace tokens, "Hello" to 1
	if resp.Usage.PromptTokens != 2 || resp.Usage.CompletionTokens != 1 || resp.Usage.TotalTokens != 3 {
		t.Errorf("usage = %+v, want 2/1/3", resp.Usage)
	}
}

func TestChatCompletionsDefaultsModel(t *testing.T) {
	h, _ := newTestHandlers(t, helloUpstream)

	rec := postChat(t, h, `{"messages":[{"role":"user","content":"Hi"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp types.ChatCompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Model != "gemini-2.0-flash-exp" {
		t.Errorf("Model = %q, want default", resp.Model)
	}
}

func TestChatCompletionsRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"absent body", ""},
		{"malformed JSON", `{"messages": [`},
		{"empty object", `{}`},
		{"empty messages", `{"model":"m","messages":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, calls := newTestHandlers(t, helloUpstream)

			rec := postChat(t, h, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			msg, errType := decodeError(t, rec)
			if msg != "Request body is required" {
				t.Errorf("message = %q", msg)
			}
			if errType != "invalid_request_error" {
				t.Errorf("type = %q", errType)
			}
			if calls.Load() != 0 {
				t.Errorf("upstream calls = %d, want 0 on validation failure", calls.Load())
			}
			snap := h.Metrics.Snapshot()
			if snap.Total != 1 || snap.Failed != 1 {
				t.Errorf("metrics total=%d failed=%d, want 1/1", snap.Total, snap.Failed)
			}
		})
	}
}

func TestChatCompletionsRateLimitedUpstream(t *testing.T) {
	h, _ := newTestHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	rec := postChat(t, h, `{"messages":[{"role":"user","content":"Hi"}]}`)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	_, errType := decodeError(t, rec)
	if errType != "rate_limit_error" {
		t.Errorf("type = %q", errType)
	}
	if rec.Header().Get("Retry-After") != "30" {
		t.Errorf("Retry-After = %q, want 30", rec.Header().Get("Retry-After"))
	}
	// The leased credential should now be cooling down.
	if h.Pool.Active() != 1 {
		t.Errorf("active credentials = %d, want 1", h.Pool.Active())
	}
}

func TestChatCompletionsPoolExhausted(t *testing.T) {
	h, calls := newTestHandlers(t, helloUpstream)

	// Exhaust both credentials.
	h.Pool.ReportOutcome("cred-1", pool.OutcomeRateLimited)
	h.Pool.ReportOutcome("cred-2", pool.OutcomeRateLimited)

	rec := postChat(t, h, `{"messages":[{"role":"user","content":"Hi"}]}`)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	_, errType := decodeError(t, rec)
	if errType != "rate_limit_error" {
		t.Errorf("type = %q", errType)
	}
	if calls.Load() != 0 {
		t.Errorf("upstream calls = %d, want 0 when pool is exhausted", calls.Load())
	}
}

func TestChatCompletionsUpstreamErrorMapsTo500(t *testing.T) {
	h, _ := newTestHandlers(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	rec := postChat(t, h, `{"messages":[{"role":"user","content":"Hi"}]}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	_, errType := decodeError(t, rec)
	if errType != "upstream_error" {
		t.Errorf("type = %q", errType)
	}
	// Transient errors are not quota evidence; the credential stays active.
	if h.Pool.Active() != 2 {
		t.Errorf("active credentials = %d, want 2", h.Pool.Active())
	}
}

func TestChatCompletionsCacheHitSkipsUpstream(t *testing.T) {
	h, calls := newTestHandlers(t, helloUpstream)

	cache, err := ristretto.NewCache(&ristretto.Config[string, *types.ChatCompletionResponse]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(cache.Close)
	h.Cache = cache
	h.CacheTTL = time.Minute

	body := `{"messages":[{"role":"user","content":"Hi"}]}`

	first := postChat(t, h, body)
	if first.Code != http.StatusOK {
		t.Fatalf("first request: status = %d", first.Code)
	}
	cache.Wait() // flush the buffered Set before the second request

	second := postChat(t, h, body)
	if second.Code != http.StatusOK {
		t.Fatalf("second request: status = %d", second.Code)
	}
	if calls.Load() != 1 {
		t.Errorf("upstream calls = %d, want 1 (second request served from cache)", calls.Load())
	}

	var firstResp, secondResp types.ChatCompletionResponse
	if err := json.Unmarshal(first.Body.Bytes(), &firstResp); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(second.Body.Bytes(), &secondResp); err != nil {
		t.Fatal(err)
	}
	if secondResp.ID == firstResp.ID {
		t.Error("cached completion must carry a fresh id")
	}
	if !strings.HasPrefix(secondResp.ID, "chatcmpl-") {
		t.Errorf("cached completion id = %q, want chatcmpl- prefix", secondResp.ID)
	}
	if secondResp.Created == 0 {
		t.Error("cached completion must carry a fresh created timestamp")
	}
	if got := secondResp.Choices[0].Message.Content.String(); got != "Hello" {
		t.Errorf("cached completion text = %q, want Hello", got)
	}

	snap := h.Metrics.Snapshot()
	if snap.Total != 2 {
		t.Errorf("metrics total = %d, want 2 (cache hits are counted too)", snap.Total)
	}
}

func TestChatCompletionsMetricsCountedOncePerRequest(t *testing.T) {
	h, _ := newTestHandlers(t, helloUpstream)

	const k = 50
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			postChat(t, h, `{"messages":[{"role":"user","content":"Hi"}]}`)
		}()
	}
	wg.Wait()

	snap := h.Metrics.Snapshot()
	if snap.Total != k {
		t.Errorf("total = %d, want %d", snap.Total, k)
	}
	if snap.Successful+snap.Failed != snap.Total {
		t.Errorf("successful+failed = %d, total = %d", snap.Successful+snap.Failed, snap.Total)
	}
}
