package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces operations out to a fixed per-minute budget by
// enforcing a minimum interval between permits. The snapshot gatherer uses
// it to stay under the upstream API's request budget.
type RateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time // earliest instant the next permit may be granted
}

// NewRateLimiter creates a RateLimiter allowing perMinute operations per
// minute. The first call to Wait never blocks.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{interval: time.Minute / time.Duration(perMinute)}
}

// Wait blocks until the next permit is due or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	rl.mu.Lock()
	now := time.Now()
	wait := rl.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	rl.next = now.Add(wait + rl.interval)
	rl.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
