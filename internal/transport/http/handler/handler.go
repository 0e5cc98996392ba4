// Package handler composes the HTTP handlers for all route groups.
package handler

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/gemrelay/gemrelay/internal/metrics"
	"github.com/gemrelay/gemrelay/internal/pool"
	"github.com/gemrelay/gemrelay/internal/storage"
	"github.com/gemrelay/gemrelay/internal/tokenizer"
	"github.com/gemrelay/gemrelay/internal/transport/http/handler/admin"
	"github.com/gemrelay/gemrelay/internal/transport/http/handler/infra"
	"github.com/gemrelay/gemrelay/internal/transport/http/handler/proxy"
	"github.com/gemrelay/gemrelay/internal/types"
	"github.com/gemrelay/gemrelay/internal/upstream"
)

// Repo composes all domain-specific handlers.
type Repo struct {
	Proxy *proxy.Handlers
	Infra *infra.Handlers
	Admin *admin.Handlers
}

// Deps carries everything the handlers need. Storage, Tokenizer and
// Cache may be nil.
type Deps struct {
	Pool         *pool.Pool
	Upstream     *upstream.Client
	Metrics      *metrics.Registry
	Storage      storage.Storage
	Tokenizer    tokenizer.Tokenizer
	Cache        *ristretto.Cache[string, *types.ChatCompletionResponse]
	CacheTTL     time.Duration
	DefaultModel string
}

// NewRepo creates a new instance of the composed handler repository.
func NewRepo(d Deps) *Repo {
	startTime := time.Now()
	return &Repo{
		Proxy: proxy.New(d.Pool, d.Upstream, d.Metrics, d.Storage, d.Tokenizer, d.Cache, d.CacheTTL, d.DefaultModel),
		Infra: infra.New(d.Pool, d.Metrics, startTime),
		Admin: admin.New(d.Storage, d.Pool, d.Metrics, startTime),
	}
}
