package metrics

import (
	"fmt"
	"io"
)

// PrometheusContentType is the content type for the text exposition format.
const PrometheusContentType = "text/plain; version=0.0.4; charset=utf-8"

// WritePrometheus renders the snapshot in the Prometheus text exposition
// format. activeCredentials comes from the pool, which the registry does
// not know about.
func (s Snapshot) WritePrometheus(w io.Writer, activeCredentials int) {
	fmt.Fprintf(w, "# HELP gemrelay_requests_total Total number of requests\n")
	fmt.Fprintf(w, "# TYPE gemrelay_requests_total counter\n")
	fmt.Fprintf(w, "gemrelay_requests_total %d\n\n", s.Total)

	fmt.Fprintf(w, "# HELP gemrelay_requests_successful Total number of successful requests\n")
	fmt.Fprintf(w, "# TYPE gemrelay_requests_successful counter\n")
	fmt.Fprintf(w, "gemrelay_requests_successful %d\n\n", s.Successful)

	fmt.Fprintf(w, "# HELP gemrelay_requests_failed Total number of failed requests\n")
	fmt.Fprintf(w, "# TYPE gemrelay_requests_failed counter\n")
	fmt.Fprintf(w, "gemrelay_requests_failed %d\n\n", s.Failed)

	fmt.Fprintf(w, "# HELP gemrelay_uptime_seconds Server uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE gemrelay_uptime_seconds counter\n")
	fmt.Fprintf(w, "gemrelay_uptime_seconds %f\n\n", s.UptimeSeconds)

	fmt.Fprintf(w, "# HELP gemrelay_success_rate Success rate (0-1)\n")
	fmt.Fprintf(w, "# TYPE gemrelay_success_rate gauge\n")
	fmt.Fprintf(w, "gemrelay_success_rate %f\n\n", s.SuccessRate())

	fmt.Fprintf(w, "# HELP gemrelay_avg_response_time_ms Average response time in milliseconds\n")
	fmt.Fprintf(w, "# TYPE gemrelay_avg_response_time_ms gauge\n")
	fmt.Fprintf(w, "gemrelay_avg_response_time_ms %f\n\n", s.AvgLatencyMs)

	fmt.Fprintf(w, "# HELP gemrelay_active_credentials Number of usable upstream credentials\n")
	fmt.Fprintf(w, "# TYPE gemrelay_active_credentials gauge\n")
	fmt.Fprintf(w, "gemrelay_active_credentials %d\n", activeCredentials)
}
