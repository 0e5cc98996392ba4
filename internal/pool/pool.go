// Package pool rotates upstream API credentials to spread load across
// quota-limited accounts.
package pool

import (
	"errors"
	"sync"
	"time"
)

// ErrPoolExhausted is returned by Acquire when every credential is cooling down.
var ErrPoolExhausted = errors.New("all credentials are cooling down")

// ErrEmptyPool is returned when the pool was constructed without credentials.
var ErrEmptyPool = errors.New("credential pool is empty")

// Outcome classifies the result of an upstream call for rotation purposes.
type Outcome int

const (
	// OutcomeSuccess resets the credential's failure streak.
	OutcomeSuccess Outcome = iota
	// OutcomeRateLimited puts the credential on cool-down.
	OutcomeRateLimited
	// OutcomeError counts a failure but is not quota evidence.
	OutcomeError
)

// credential is the pool-internal rotation state for one upstream key.
// It never leaves the pool; callers get a Lease instead.
type credential struct {
	id       string
	key      string
	priority int

	consecutiveFailures int
	lastUsedAt          time.Time
	exhaustedUntil      time.Time
}

// Lease identifies an acquired credential and carries its key for one call.
type Lease struct {
	ID  string
	Key string
}

// Status is a safe snapshot of one credential's rotation state.
type Status struct {
	ID                  string    `json:"id"`
	KeyPrefix           string    `json:"key_prefix"`
	Priority            int       `json:"priority"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	CoolingDown         bool      `json:"cooling_down"`
	LastUsedAt          time.Time `json:"last_used_at,omitzero"`
}

// Entry describes a credential when constructing a pool.
type Entry struct {
	ID       string
	Key      string
	Priority int
}

// Pool selects credentials round-robin, skipping those on cool-down.
type Pool struct {
	mu       sync.Mutex
	creds    []*credential
	next     int
	cooldown time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New creates a pool over the given credentials. cooldown is how long a
// credential sits out after the upstream reports quota exhaustion for it.
func New(entries []Entry, cooldown time.Duration) *Pool {
	creds := make([]*credential, 0, len(entries))
	for _, e := range entries {
		creds = append(creds, &credential{
			id:       e.ID,
			key:      e.Key,
			priority: e.Priority,
		})
	}
	return &Pool{
		creds:    creds,
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Acquire returns a lease on the next usable credential. Rotation is fair:
// the scan starts one past the previously selected slot, so no credential is
// starved. Returns ErrPoolExhausted when every credential is cooling down.
func (p *Pool) Acquire() (Lease, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.creds) == 0 {
		return Lease{}, ErrEmptyPool
	}

	now := p.now()
	for i := 0; i < len(p.creds); i++ {
		idx := (p.next + i) % len(p.creds)
		c := p.creds[idx]
		if c.exhaustedUntil.After(now) {
			continue
		}
		p.next = (idx + 1) % len(p.creds)
		return Lease{ID: c.id, Key: c.key}, nil
	}

	return Lease{}, ErrPoolExhausted
}

// ReportOutcome records the result of an upstream call for rotation state.
// A rate-limit outcome starts the cool-down clock; success clears the failure
// streak and stamps last-used. Other errors (timeouts, 5xx) bump the failure
// count only, since they say nothing about quota.
func (p *Pool) ReportOutcome(id string, outcome Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.find(id)
	if c == nil {
		return
	}

	switch outcome {
	case OutcomeSuccess:
		c.consecutiveFailures = 0
		c.lastUsedAt = p.now()
	case OutcomeRateLimited:
		c.consecutiveFailures++
		c.exhaustedUntil = p.now().Add(p.cooldown)
	case OutcomeError:
		c.consecutiveFailures++
	}
}

// Len returns the total number of credentials in the pool.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}

// Active returns how many credentials are currently usable.
func (p *Pool) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	active := 0
	for _, c := range p.creds {
		if !c.exhaustedUntil.After(now) {
			active++
		}
	}
	return active
}

// Statuses returns a masked snapshot of every credential's rotation state.
func (p *Pool) Statuses() []Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	out := make([]Status, 0, len(p.creds))
	for _, c := range p.creds {
		out = append(out, Status{
			ID:                  c.id,
			KeyPrefix:           maskKey(c.key),
			Priority:            c.priority,
			ConsecutiveFailures: c.consecutiveFailures,
			CoolingDown:         c.exhaustedUntil.After(now),
			LastUsedAt:          c.lastUsedAt,
		})
	}
	return out
}

func (p *Pool) find(id string) *credential {
	for _, c := range p.creds {
		if c.id == id {
			return c
		}
	}
	return nil
}

// maskKey returns a short identifying prefix of a key, safe for display.
func maskKey(key string) string {
	if len(key) <= 10 {
		return "***"
	}
	return key[:10] + "..."
}
