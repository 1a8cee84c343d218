// Package ratelimit provides a keyed failure-counting lockout guard.
// A key is blocked once it accumulates too many failures inside the block
// window; the record is discarded entirely once the window elapses.
//
// State is in-memory only and does not survive a restart. That is a known
// limitation of the design, not an oversight.
package ratelimit

import (
	"sync"
	"time"
)

// Default policy values.
const (
	DefaultMaxAttempts   = 5
	DefaultBlockDuration = 15 * time.Minute
)

type attempt struct {
	count  int
	lastAt time.Time
}

// Limiter tracks per-key failure counts with a cooldown.
// Safe for concurrent use.
type Limiter struct {
	mu            sync.Mutex
	attempts      map[string]*attempt
	maxAttempts   int
	blockDuration time.Duration

	// now is injectable for tests.
	now func() time.Time
}

// New creates a limiter with the given policy. Non-positive arguments fall
// back to the defaults.
func New(maxAttempts int, blockDuration time.Duration) *Limiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if blockDuration <= 0 {
		blockDuration = DefaultBlockDuration
	}
	return &Limiter{
		attempts:      make(map[string]*attempt),
		maxAttempts:   maxAttempts,
		blockDuration: blockDuration,
		now:           time.Now,
	}
}

// RecordFailure registers a failed attempt for the key.
func (l *Limiter) RecordFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if a, ok := l.attempts[key]; ok {
		a.count++
		a.lastAt = l.now()
		return
	}
	l.attempts[key] = &attempt{count: 1, lastAt: l.now()}
}

// IsBlocked reports whether the key is currently locked out.
// A record whose block window has elapsed is discarded, so the next failure
// starts counting from zero again.
func (l *Limiter) IsBlocked(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[key]
	if !ok {
		return false
	}

	if l.now().Sub(a.lastAt) >= l.blockDuration {
		delete(l.attempts, key)
		return false
	}
	return a.count >= l.maxAttempts
}

// RemainingAttempts returns how many failures the key has left before lockout.
func (l *Limiter) RemainingAttempts(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[key]
	if !ok || l.now().Sub(a.lastAt) >= l.blockDuration {
		return l.maxAttempts
	}
	if remaining := l.maxAttempts - a.count; remaining > 0 {
		return remaining
	}
	return 0
}

// BlockTimeRemaining returns how long the key stays locked out.
// Zero when the key is not blocked.
func (l *Limiter) BlockTimeRemaining(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	a, ok := l.attempts[key]
	if !ok || a.count < l.maxAttempts {
		return 0
	}

	if remaining := l.blockDuration - l.now().Sub(a.lastAt); remaining > 0 {
		return remaining
	}
	return 0
}

// Reset clears the failure record for the key. Called after a successful
// attempt.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}
