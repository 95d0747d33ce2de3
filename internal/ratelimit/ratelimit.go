// Package ratelimit spaces out requests with a randomized delay, for sites
// that throttle aggressive crawls.
package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Limiter enforces a minimum randomized gap between actions. The zero delay
// Limiter never waits.
type Limiter struct {
	minDelay time.Duration
	maxDelay time.Duration

	mu         sync.Mutex
	lastAction time.Time
}

// New creates a Limiter waiting between min and max per action. A max at or
// below min disables the jitter.
func New(min, max time.Duration) *Limiter {
	if max < min {
		max = min
	}
	return &Limiter{minDelay: min, maxDelay: max}
}

// Wait blocks until the delay since the previous action has passed, or the
// context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	delay := l.minDelay
	if l.maxDelay > l.minDelay {
		delay += time.Duration(rand.Int63n(int64(l.maxDelay - l.minDelay)))
	}
	next := l.lastAction.Add(delay)
	l.lastAction = time.Now()
	if wait := time.Until(next); wait > 0 {
		l.lastAction = next
		l.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
			return nil
		}
	}
	l.mu.Unlock()
	return nil
}
