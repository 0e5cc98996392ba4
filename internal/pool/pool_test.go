package pool

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestPool(keys []string, cooldown time.Duration) *Pool {
	entries := make([]Entry, 0, len(keys))
	for i, k := range keys {
		entries = append(entries, Entry{ID: k + "-id", Key: k, Priority: i + 1})
	}
	return New(entries, cooldown)
}

func TestAcquireRotatesFairly(t *testing.T) {
	p := newTestPool([]string{"key-aaaaaaaaaa", "key-bbbbbbbbbb", "key-cccccccccc"}, time.Minute)

	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		lease, err := p.Acquire()
		if err != nil {
			t.Fatalf("Acquire() error: %v", err)
		}
		if seen[lease.ID] {
			t.Errorf("credential %s returned twice within one cycle", lease.ID)
		}
		seen[lease.ID] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct credentials, got %d", len(seen))
	}

	// Fourth acquisition wraps around to the first credential.
	lease, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if lease.ID != "key-aaaaaaaaaa-id" {
		t.Errorf("expected rotation to wrap to first credential, got %s", lease.ID)
	}
}

func TestAcquireSkipsCoolingCredential(t *testing.T) {
	p := newTestPool([]string{"key-aaaaaaaaaa", "key-bbbbbbbbbb"}, time.Minute)

	first, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	p.ReportOutcome(first.ID, OutcomeRateLimited)

	for i := 0; i < 4; i++ {
		lease, err := p.Acquire()
		if err != nil {
			t.Fatalf("Acquire() error: %v", err)
		}
		if lease.ID == first.ID {
			t.Fatalf("acquired cooling-down credential %s", first.ID)
		}
	}
}

func TestAcquireFailsWhenAllExhausted(t *testing.T) {
	p := newTestPool([]string{"key-aaaaaaaaaa"}, time.Minute)

	lease, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	p.ReportOutcome(lease.ID, OutcomeRateLimited)

	if _, err := p.Acquire(); !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("expected ErrPoolExhausted, got %v", err)
	}
}

func TestCooldownExpires(t *testing.T) {
	p := newTestPool([]string{"key-aaaaaaaaaa"}, time.Minute)

	// Freeze the clock so the cool-down window is exact.
	base := time.Now()
	p.now = func() time.Time { return base }

	lease, _ := p.Acquire()
	p.ReportOutcome(lease.ID, OutcomeRateLimited)

	if _, err := p.Acquire(); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("expected ErrPoolExhausted during cool-down, got %v", err)
	}

	p.now = func() time.Time { return base.Add(time.Minute + time.Second) }
	if _, err := p.Acquire(); err != nil {
		t.Errorf("expected credential usable after cool-down, got %v", err)
	}
}

func TestErrorOutcomeDoesNotExhaust(t *testing.T) {
	p := newTestPool([]string{"key-aaaaaaaaaa"}, time.Minute)

	lease, _ := p.Acquire()
	p.ReportOutcome(lease.ID, OutcomeError)

	if _, err := p.Acquire(); err != nil {
		t.Errorf("timeout/error outcome must not cool down the credential, got %v", err)
	}

	statuses := p.Statuses()
	if statuses[0].ConsecutiveFailures != 1 {
		t.Errorf("expected 1 consecutive failure, got %d", statuses[0].ConsecutiveFailures)
	}
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	p := newTestPool([]string{"key-aaaaaaaaaa"}, time.Minute)

	lease, _ := p.Acquire()
	p.ReportOutcome(lease.ID, OutcomeError)
	p.ReportOutcome(lease.ID, OutcomeError)
	p.ReportOutcome(lease.ID, OutcomeSuccess)

	statuses := p.Statuses()
	if statuses[0].ConsecutiveFailures != 0 {
		t.Errorf("expected failure streak reset, got %d", statuses[0].ConsecutiveFailures)
	}
	if statuses[0].LastUsedAt.IsZero() {
		t.Error("expected last_used_at stamped on success")
	}
}

func TestEmptyPool(t *testing.T) {
	p := New(nil, time.Minute)
	if _, err := p.Acquire(); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("expected ErrEmptyPool, got %v", err)
	}
}

func TestActiveCounts(t *testing.T) {
	p := newTestPool([]string{"key-aaaaaaaaaa", "key-bbbbbbbbbb", "key-cccccccccc"}, time.Minute)

	if got := p.Active(); got != 3 {
		t.Fatalf("Active() = %d, want 3", got)
	}

	lease, _ := p.Acquire()
	p.ReportOutcome(lease.ID, OutcomeRateLimited)

	if got := p.Active(); got != 2 {
		t.Errorf("Active() = %d, want 2", got)
	}
	if got := p.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestConcurrentAcquire(t *testing.T) {
	p := newTestPool([]string{"key-aaaaaaaaaa", "key-bbbbbbbbbb", "key-cccccccccc"}, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := p.Acquire()
			if err != nil {
				t.Errorf("Acquire() error: %v", err)
				return
			}
			p.ReportOutcome(lease.ID, OutcomeSuccess)
		}()
	}
	wg.Wait()

	if got := p.Active(); got != 3 {
		t.Errorf("Active() = %d after successes, want 3", got)
	}
}
