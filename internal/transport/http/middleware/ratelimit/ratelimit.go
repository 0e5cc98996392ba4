// Package ratelimit provides per-client rate limiting using a token bucket.
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gemrelay/gemrelay/internal/types"
)

// bucket represents a token bucket for a single client.
type bucket struct {
	tokens   float64
	lastFill time.Time
	mu       sync.Mutex
}

// Limiter tracks rate limits per client IP.
type Limiter struct {
	buckets sync.Map // map[clientIP]*bucket
	perMin  int
}

// New creates a rate limiter allowing perMinute requests per client.
// A limit of 0 or less disables limiting.
func New(perMinute int) *Limiter {
	return &Limiter{perMin: perMinute}
}

// Allow checks if a request from the given client is allowed.
func (l *Limiter) Allow(clientIP string) bool {
	if l.perMin <= 0 {
		return true
	}

	val, _ := l.buckets.LoadOrStore(clientIP, &bucket{
		tokens:   float64(l.perMin),
		lastFill: time.Now(),
	})
	b := val.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	// Refill tokens based on elapsed time
	now := time.Now()
	elapsed := now.Sub(b.lastFill).Seconds()
	refillRate := float64(l.perMin) / 60.0
	b.tokens += elapsed * refillRate
	if b.tokens > float64(l.perMin) {
		b.tokens = float64(l.perMin)
	}
	b.lastFill = now

	if b.tokens >= 1.0 {
		b.tokens--
		return true
	}
	return false
}

// Middleware returns an HTTP middleware that enforces the rate limit.
func Middleware(limiter *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "60")
				types.WriteError(w, http.StatusTooManyRequests, types.ErrRateLimit("rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
