package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps one entry per client in process memory. Stale entries
// are overwritten on the client's next request; call Sweep to drop them.
// Not suitable when several instances serve the same clients.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	policy  Policy
	now     func() time.Time
}

// MemoryOption configures a MemoryLimiter.
type MemoryOption func(*MemoryLimiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryLimiter) { m.now = now }
}

// NewMemoryLimiter creates an in-memory limiter for policy.
func NewMemoryLimiter(policy Policy, opts ...MemoryOption) *MemoryLimiter {
	m := &MemoryLimiter{
		entries: make(map[string]*entry),
		policy:  policy,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CheckAndConsume implements Limiter.
func (m *MemoryLimiter) CheckAndConsume(_ context.Context, clientKey string) Decision {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[clientKey]
	if !ok || !now.Before(e.resetAt) {
		m.entries[clientKey] = &entry{count: 1, resetAt: now.Add(m.policy.Window)}
		return Decision{Allowed: true}
	}

	if e.count >= m.policy.Limit {
		return Decision{Allowed: false, RetryAfter: e.resetAt.Sub(now)}
	}

	e.count++
	return Decision{Allowed: true}
}

// Sweep removes entries whose window has lapsed and returns how many were dropped.
func (m *MemoryLimiter) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.entries {
		if !now.Before(e.resetAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps stale entries every interval until ctx is done.
func (m *MemoryLimiter) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

var _ Limiter = (*MemoryLimiter)(nil)
