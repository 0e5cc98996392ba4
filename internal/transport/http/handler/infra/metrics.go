package infra

import (
	"net/http"

	"github.com/gemrelay/gemrelay/internal/metrics"
)

// Metrics serves the counters in Prometheus text exposition format
// at GET /metrics.
func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	snap := h.Registry.Snapshot()

	w.Header().Set("Content-Type", metrics.PrometheusContentType)
	snap.WritePrometheus(w, h.Pool.Active())
}
