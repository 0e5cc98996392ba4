// Package admin implements the guarded operations API.
package admin

import (
	"time"

	"github.com/gemrelay/gemrelay/internal/metrics"
	"github.com/gemrelay/gemrelay/internal/pool"
	"github.com/gemrelay/gemrelay/internal/storage"
)

// Handlers holds the dependencies for admin HTTP handlers.
type Handlers struct {
	Storage   storage.Storage
	Pool      *pool.Pool
	Registry  *metrics.Registry
	StartTime time.Time
}

// New creates a new instance of admin handlers.
func New(store storage.Storage, p *pool.Pool, reg *metrics.Registry, startTime time.Time) *Handlers {
	return &Handlers{
		Storage:   store,
		Pool:      p,
		Registry:  reg,
		StartTime: startTime,
	}
}
