package admin

import (
	"net/http"
	"strconv"

	"github.com/gemrelay/gemrelay/internal/storage"
	"github.com/gemrelay/gemrelay/internal/transport/http/handler/shared"
)

// UsageStats handles GET /api/admin/usage.
func (h *Handlers) UsageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Storage.GetUsageStats()
	if err != nil {
		shared.WriteJSONError(w, "failed to load usage stats", http.StatusInternalServerError)
		return
	}

	shared.WriteJSON(w, stats, http.StatusOK)
}

// RequestLogs handles GET /api/admin/logs with optional filters:
// model, status and limit query parameters.
func (h *Handlers) RequestLogs(w http.ResponseWriter, r *http.Request) {
	filter := storage.LogFilter{
		Model: r.URL.Query().Get("model"),
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status, err := strconv.Atoi(s)
		if err != nil {
			shared.WriteJSONError(w, "invalid status filter", http.StatusBadRequest)
			return
		}
		filter.StatusCode = &status
	}

	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			shared.WriteJSONError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	logs, err := h.Storage.GetRequestLogs(filter)
	if err != nil {
		shared.WriteJSONError(w, "failed to load request logs", http.StatusInternalServerError)
		return
	}

	shared.WriteJSON(w, map[string]any{
		"logs":  logs,
		"count": len(logs),
	}, http.StatusOK)
}
