package upstream

import (
	"encoding/json"
	"time"
)

// Kind classifies an upstream call result.
type Kind int

const (
	// Success means the upstream returned generated text.
	Success Kind = iota
	// RateLimited means the upstream signaled quota exhaustion for the key used.
	RateLimited
	// Failed covers every other failure: timeouts, 5xx, malformed payloads.
	Failed
)

// Result is the tagged outcome of one generateContent call. Classification
// of upstream responses happens in exactly one place (the client), so the
// response translation table has a single authoritative input.
type Result struct {
	Kind Kind

	// Success fields
	Text string
	Raw  json.RawMessage

	// Failure fields
	StatusCode int
	Message    string

	// RetryAfter is the upstream-suggested wait, zero when not provided.
	RetryAfter time.Duration
}
