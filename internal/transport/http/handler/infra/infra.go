// Package infra implements health, status and metrics endpoints.
package infra

import (
	"time"

	"github.com/gemrelay/gemrelay/internal/metrics"
	"github.com/gemrelay/gemrelay/internal/pool"
)

// Handlers holds the dependencies for infrastructure HTTP handlers.
type Handlers struct {
	Pool      *pool.Pool
	Registry  *metrics.Registry
	StartTime time.Time
}

// New creates a new instance of infrastructure handlers.
func New(p *pool.Pool, reg *metrics.Registry, startTime time.Time) *Handlers {
	return &Handlers{
		Pool:      p,
		Registry:  reg,
		StartTime: startTime,
	}
}
