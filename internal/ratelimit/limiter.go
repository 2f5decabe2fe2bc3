// Package ratelimit paces API calls using a token bucket.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/fsnav/fsnav/internal/logging"
)

// warnAfter is the wait above which a throttled call is logged.
const warnAfter = 2 * time.Second

// RateLimiter implements a token bucket rate limiter.
// It allows bursts up to maxTokens, then refills at refillRate tokens/second.
type RateLimiter struct {
	tokens       float64
	maxTokens    float64
	refillRate   float64
	lastRefill   time.Time
	lastWarnTime time.Time
	logger       *logging.Logger
	mu           sync.Mutex
}

// NewRateLimiter creates a limiter that starts with a full bucket.
// A non-positive rate returns nil; a nil limiter never blocks.
func NewRateLimiter(tokensPerSecond, burstSize float64, logger *logging.Logger) *RateLimiter {
	if tokensPerSecond <= 0 {
		return nil
	}
	if burstSize < 1 {
		burstSize = 1
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RateLimiter{
		tokens:     burstSize,
		maxTokens:  burstSize,
		refillRate: tokensPerSecond,
		lastRefill: time.Now(),
		logger:     logger,
	}
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return ctx.Err()
	}
	if rl.tryAcquire() {
		return nil
	}

	if wait := rl.timeUntilNextToken(); wait > warnAfter {
		rl.mu.Lock()
		// At most one warning every 10 seconds.
		if time.Since(rl.lastWarnTime) > 10*time.Second {
			rl.logger.Warn().Dur("wait", wait).Msg("Request rate limited")
			rl.lastWarnTime = time.Now()
		}
		rl.mu.Unlock()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if rl.tryAcquire() {
			return nil
		}

		timer := time.NewTimer(rl.timeUntilNextToken())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tryAcquire takes one token without blocking.
func (rl *RateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill(time.Now())
	if rl.tokens >= 1.0 {
		rl.tokens -= 1.0
		return true
	}
	return false
}

func (rl *RateLimiter) refill(now time.Time) {
	rl.tokens += now.Sub(rl.lastRefill).Seconds() * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now
}

func (rl *RateLimiter) timeUntilNextToken() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	needed := 1.0 - rl.tokens
	if needed <= 0 {
		return 0
	}
	return time.Duration(needed / rl.refillRate * float64(time.Second))
}

// Tokens returns the tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	if rl == nil {
		return 0
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill(time.Now())
	return rl.tokens
}
