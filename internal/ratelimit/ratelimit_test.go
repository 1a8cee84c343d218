package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time            { return c.t }
func (c *fakeClock) Advance(d time.Duration)   { c.t = c.t.Add(d) }
func newFakeClock() *fakeClock                 { return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)} }
func newTestLimiter(clock *fakeClock) *Limiter {
	l := New(5, 15*time.Minute)
	l.now = clock.Now
	return l
}

func TestLimiter_NotBlockedInitially(t *testing.T) {
	l := newTestLimiter(newFakeClock())

	assert.False(t, l.IsBlocked("user@example.com"))
	assert.Equal(t, 5, l.RemainingAttempts("user@example.com"))
	assert.Equal(t, time.Duration(0), l.BlockTimeRemaining("user@example.com"))
}

func TestLimiter_BlocksAfterMaxAttempts(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)

	for i := 0; i < 4; i++ {
		l.RecordFailure("key")
		assert.False(t, l.IsBlocked("key"), "attempt %d should not block", i+1)
	}

	l.RecordFailure("key")
	assert.True(t, l.IsBlocked("key"))
	assert.Equal(t, 0, l.RemainingAttempts("key"))
	assert.Equal(t, 15*time.Minute, l.BlockTimeRemaining("key"))
}

func TestLimiter_UnblocksAfterWindow(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)

	for i := 0; i < 5; i++ {
		l.RecordFailure("key")
	}
	assert.True(t, l.IsBlocked("key"))

	clock.Advance(15*time.Minute + time.Second)

	// The record is discarded, not merely unblocked: the counter starts over.
	assert.False(t, l.IsBlocked("key"))
	assert.Equal(t, 5, l.RemainingAttempts("key"))
}

func TestLimiter_BlockTimeRemainingCountsDown(t *testing.T) {
	clock := newFakeClock()
	l := newTestLimiter(clock)

	for i := 0; i < 5; i++ {
		l.RecordFailure("key")
	}

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 10*time.Minute, l.BlockTimeRemaining("key"))

	clock.Advance(10 * time.Minute)
	assert.Equal(t, time.Duration(0), l.BlockTimeRemaining("key"))
}

func TestLimiter_ResetClearsRecord(t *testing.T) {
	l := newTestLimiter(newFakeClock())

	for i := 0; i < 5; i++ {
		l.RecordFailure("key")
	}
	assert.True(t, l.IsBlocked("key"))

	l.Reset("key")
	assert.False(t, l.IsBlocked("key"))
	assert.Equal(t, 5, l.RemainingAttempts("key"))
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	l := newTestLimiter(newFakeClock())

	for i := 0; i < 5; i++ {
		l.RecordFailure("blocked@example.com")
	}

	assert.True(t, l.IsBlocked("blocked@example.com"))
	assert.False(t, l.IsBlocked("fine@example.com"))
	assert.Equal(t, 5, l.RemainingAttempts("fine@example.com"))
}

func TestNew_DefaultsApplied(t *testing.T) {
	l := New(0, 0)

	assert.Equal(t, DefaultMaxAttempts, l.maxAttempts)
	assert.Equal(t, DefaultBlockDuration, l.blockDuration)
}
