package admin

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gemrelay/gemrelay/internal/transport/http/handler/shared"
	"github.com/gemrelay/gemrelay/internal/version"
)

// SystemStatus handles GET /api/system/status. It combines the request
// counters with a live view of the credential pool.
func (h *Handlers) SystemStatus(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.StartTime)
	snap := h.Registry.Snapshot()

	shared.WriteJSON(w, map[string]any{
		"version":     version.Version,
		"go_version":  runtime.Version(),
		"uptime":      uptime.String(),
		"uptime_secs": int64(uptime.Seconds()),
		"server": map[string]any{
			"total_requests":       snap.Total,
			"successful_requests":  snap.Successful,
			"failed_requests":      snap.Failed,
			"success_rate":         snap.SuccessRate(),
			"avg_response_time_ms": snap.AvgLatencyMs,
			"by_status":            snap.ByStatus,
		},
		"credentials": map[string]any{
			"total":   h.Pool.Len(),
			"active":  h.Pool.Active(),
			"cooling": h.Pool.Len() - h.Pool.Active(),
		},
	}, http.StatusOK)
}
