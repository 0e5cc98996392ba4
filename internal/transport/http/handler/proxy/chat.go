package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gemrelay/gemrelay/internal/prompt"
	"github.com/gemrelay/gemrelay/internal/translate"
	"github.com/gemrelay/gemrelay/internal/transport/http/handler/shared"
	"github.com/gemrelay/gemrelay/internal/transport/http/middleware"
	"github.com/gemrelay/gemrelay/internal/types"
	"github.com/gemrelay/gemrelay/internal/upstream"
)

// missingBodyMessage is returned for any request the gateway cannot turn
// into a prompt: absent body, unparsable JSON, or an empty messages array.
const missingBodyMessage = "Request body is required"

// ChatCompletions handles POST /v1/chat/completions. It flattens the
// conversation into a single prompt, leases a credential, calls the
// upstream model and translates the outcome back into the OpenAI shape.
// Every request is recorded in the metrics registry exactly once.
func (h *Handlers) ChatCompletions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := middleware.GetRequestID(r.Context())

	req, ok := h.decodeRequest(r)
	if !ok {
		types.WriteError(w, http.StatusBadRequest, types.ErrInvalidRequest(missingBodyMessage))
		h.Metrics.Record(http.StatusBadRequest, time.Since(start))
		return
	}

	model := req.Model
	if model == "" {
		model = h.DefaultModel
		req.Model = model
	}

	promptText := prompt.Build(req.Messages)

	if h.Cache != nil {
		if cached, found := h.Cache.Get(cacheKey(model, promptText, req)); found {
			h.writeCached(w, cached, req)
			h.Metrics.Record(http.StatusOK, time.Since(start))
			return
		}
	}

	lease, err := h.Pool.Acquire()
	if err != nil {
		// No upstream call is made: every credential is cooling down (or
		// none are configured), which is quota evidence in itself.
		res := upstream.Result{Kind: upstream.RateLimited, Message: "all credentials are cooling down, retry later"}
		body, status := translate.ToChatCompletion(res, req, promptText)
		shared.WriteJSON(w, body, status)
		h.Metrics.Record(status, time.Since(start))
		go h.logChatRequest(requestID, "", model, promptText, "", res.Message, status, start)
		return
	}

	res := h.Upstream.Generate(r.Context(), lease.Key, model, promptText, req.MaxTokens, req.Temperature)
	h.Pool.ReportOutcome(lease.ID, outcomeFor(res.Kind))

	body, status := translate.ToChatCompletion(res, req, promptText)

	if status == http.StatusOK && h.Cache != nil {
		if resp, isResp := body.(*types.ChatCompletionResponse); isResp {
			h.Cache.SetWithTTL(cacheKey(model, promptText, req), resp, 1, h.CacheTTL)
		}
	}

	if res.Kind == upstream.RateLimited && res.RetryAfter > 0 {
		w.Header().Set("Retry-After", retryAfterSeconds(res.RetryAfter))
	}
	shared.WriteJSON(w, body, status)
	h.Metrics.Record(status, time.Since(start))

	go h.logChatRequest(requestID, lease.ID, model, promptText, res.Text, res.Message, status, start)
}

// decodeRequest reads and validates the request body. A request with no
// body, malformed JSON or zero messages is rejected before any credential
// is leased or upstream call attempted.
func (h *Handlers) decodeRequest(r *http.Request) (*types.ChatCompletionRequest, bool) {
	bodyBytes, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil || len(bodyBytes) == 0 {
		return nil, false
	}

	var req types.ChatCompletionRequest
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		return nil, false
	}
	if len(req.Messages) == 0 {
		return nil, false
	}

	return &req, true
}

// writeCached serves a cached completion under fresh response identity.
func (h *Handlers) writeCached(w http.ResponseWriter, cached *types.ChatCompletionResponse, req *types.ChatCompletionRequest) {
	resp := *cached
	resp.ID = "chatcmpl-" + uuid.New().String()
	resp.Created = time.Now().Unix()
	resp.Model = req.Model
	shared.WriteJSON(w, &resp, http.StatusOK)
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
