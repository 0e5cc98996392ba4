// Package app wires the router and HTTP server.
package app

import (
	"log/slog"
	"net/http"

	"github.com/gemrelay/gemrelay/internal/storage"
	"github.com/gemrelay/gemrelay/internal/transport/http/handler"
	"github.com/gemrelay/gemrelay/internal/transport/http/middleware"
	"github.com/gemrelay/gemrelay/internal/transport/http/middleware/auth"
	"github.com/gemrelay/gemrelay/internal/transport/http/middleware/ratelimit"
	"github.com/gemrelay/gemrelay/internal/types"
)

// RouterOptions configures the HTTP router behavior.
type RouterOptions struct {
	Logger            *slog.Logger
	Storage           storage.Storage
	RequestsPerMinute int
}

// NewRouter creates and configures the HTTP router with all application
// routes. Returns an http.Handler with middleware applied.
func NewRouter(repo *handler.Repo, opts *RouterOptions) http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", repo.Infra.HealthCheck)
	mux.HandleFunc("GET /metrics", repo.Infra.Metrics)
	mux.HandleFunc("GET /{$}", repo.Infra.RootStatus)

	// Proxy routes, optionally rate limited per client IP
	var chat http.Handler = http.HandlerFunc(repo.Proxy.ChatCompletions)
	if opts.RequestsPerMinute > 0 {
		limiter := ratelimit.New(opts.RequestsPerMinute)
		chat = ratelimit.Middleware(limiter)(chat)
	}
	mux.Handle("POST /v1/chat/completions", chat)

	// Admin API routes (require admin auth when a password is set)
	registerAdminRoutes(mux, repo, opts)

	// Everything else is an unknown route
	mux.Handle("/", http.HandlerFunc(notFound))

	// Apply middleware chain (order: outer to inner)
	var h http.Handler = mux

	if opts.Logger != nil {
		h = middleware.RequestLogger(opts.Logger)(h)
	}

	h = middleware.RequestID(h)
	h = middleware.CORS(h)

	return h
}

// registerAdminRoutes adds the guarded operations routes to the router.
func registerAdminRoutes(mux *http.ServeMux, repo *handler.Repo, opts *RouterOptions) {
	adminAuth := auth.AdminAuth(opts.Storage)

	withAuth := func(h http.HandlerFunc) http.Handler {
		return adminAuth(h)
	}

	mux.Handle("GET /api/system/status", withAuth(repo.Admin.SystemStatus))

	mux.Handle("GET /api/admin/credentials", withAuth(repo.Admin.ListCredentials))
	mux.Handle("POST /api/admin/credentials", withAuth(repo.Admin.CreateCredential))

	mux.Handle("GET /api/admin/usage", withAuth(repo.Admin.UsageStats))
	mux.Handle("GET /api/admin/logs", withAuth(repo.Admin.RequestLogs))

	mux.Handle("PUT /api/admin/password", withAuth(repo.Admin.ChangeAdminPassword))
}

// notFound answers unmatched routes with the standard error shape.
func notFound(w http.ResponseWriter, r *http.Request) {
	types.WriteError(w, http.StatusNotFound, types.ErrNotFound("unknown route: "+r.URL.Path))
}
