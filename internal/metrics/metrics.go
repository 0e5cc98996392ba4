// Package metrics tracks process-wide request counters for the gateway.
package metrics

import (
	"sync"
	"time"
)

// Registry holds request counters shared by every in-flight request.
// All mutation happens under one mutex, held only for the increment.
type Registry struct {
	mu           sync.Mutex
	start        time.Time
	total        uint64
	successful   uint64
	failed       uint64
	byStatus     map[int]uint64
	totalLatency time.Duration
}

// Snapshot is a point-in-time copy of the registry, safe to read freely.
type Snapshot struct {
	Total          uint64           `json:"total_requests"`
	Successful     uint64           `json:"successful_requests"`
	Failed         uint64           `json:"failed_requests"`
	ByStatus       map[int]uint64   `json:"by_status"`
	AvgLatency     time.Duration    `json:"-"`
	AvgLatencyMs   float64          `json:"avg_response_time_ms"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
}

// New creates an empty registry. Counters span the process lifetime and are
// not persisted.
func New() *Registry {
	return &Registry{
		start:    time.Now(),
		byStatus: make(map[int]uint64),
	}
}

// Record counts one finished request. A status below 400 is a success.
// Callers must invoke this exactly once per request.
func (r *Registry) Record(status int, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	if status < 400 {
		r.successful++
	} else {
		r.failed++
	}
	r.byStatus[status]++
	r.totalLatency += latency
}

// Snapshot returns a copy of all counters.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	byStatus := make(map[int]uint64, len(r.byStatus))
	for k, v := range r.byStatus {
		byStatus[k] = v
	}

	var avg time.Duration
	if r.total > 0 {
		avg = r.totalLatency / time.Duration(r.total)
	}

	return Snapshot{
		Total:         r.total,
		Successful:    r.successful,
		Failed:        r.failed,
		ByStatus:      byStatus,
		AvgLatency:    avg,
		AvgLatencyMs:  float64(avg) / float64(time.Millisecond),
		UptimeSeconds: time.Since(r.start).Seconds(),
	}
}

// SuccessRate returns successful/total in [0,1], or 0 with no traffic.
func (s Snapshot) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Total)
}
