package fetch

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket shared by all outbound requests, so a
// full worker pool cannot stampede a data provider. Tokens accrue
// continuously at the configured rate; a small burst allowance lets the
// first workers of a scan start without queueing.
type RateLimiter struct {
	mu        sync.Mutex
	tokens    float64
	burst     float64
	perSecond float64
	last      time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests with the
// given burst headroom.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		tokens:    float64(burst),
		burst:     float64(burst),
		perSecond: perSecond,
		last:      time.Now(),
	}
}

// Wait blocks until a token is available or the context is done. The wait
// is computed from the refill rate rather than polled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := rl.take()
		if ok {
			return nil
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// take consumes a token if one is available, otherwise reports how long
// until the next token accrues.
func (rl *RateLimiter) take() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.tokens += now.Sub(rl.last).Seconds() * rl.perSecond
	if rl.tokens > rl.burst {
		rl.tokens = rl.burst
	}
	rl.last = now

	if rl.tokens >= 1 {
		rl.tokens--
		return 0, true
	}
	wait := time.Duration((1 - rl.tokens) / rl.perSecond * float64(time.Second))
	return wait, false
}
