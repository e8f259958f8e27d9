// Package ratelimit implements the per-client fixed-window upload limiter.
//
// A window opens on a client's first request and lasts Window. Inside it the
// first Limit requests are allowed and the rest are denied without touching
// the counter; the first request at or after the window's reset time opens a
// fresh window with a count of one.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a CheckAndConsume call.
type Decision struct {
	Allowed bool
	// RetryAfter is the time left in the current window when denied.
	RetryAfter time.Duration
}

// Limiter decides whether a client may perform one more request.
// Implementations never return errors; store failures are absorbed.
type Limiter interface {
	CheckAndConsume(ctx context.Context, clientKey string) Decision
}

// Policy is the window length and per-window ceiling.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicy allows 10 requests per hour.
var DefaultPolicy = Policy{Limit: 10, Window: time.Hour}
