package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T) (*LoginLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewLoginLimiter(LimiterConfig{MaxAttempts: 3, Window: time.Minute, Lockout: 10 * time.Minute, CleanupInterval: time.Hour})
	l.now = clock.now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestLoginLimiter_LocksAfterMaxAttempts(t *testing.T) {
	l, _ := newTestLimiter(t)

	for i := 0; i < 2; i++ {
		locked, _ := l.RecordFailure("1.2.3.4", "alice")
		assert.False(t, locked)
		allowed, _ := l.Allow("1.2.3.4", "alice")
		assert.True(t, allowed)
	}

	locked, retry := l.RecordFailure("1.2.3.4", "alice")
	assert.True(t, locked)
	assert.Equal(t, 10*time.Minute, retry)

	allowed, retry := l.Allow("1.2.3.4", "alice")
	assert.False(t, allowed)
	assert.Equal(t, 10*time.Minute, retry)

	// Other pairs are unaffected.
	allowed, _ = l.Allow("1.2.3.4", "bob")
	assert.True(t, allowed)
	allowed, _ = l.Allow("5.6.7.8", "alice")
	assert.True(t, allowed)
}

func TestLoginLimiter_LockoutExpires(t *testing.T) {
	l, clock := newTestLimiter(t)

	for i := 0; i < 3; i++ {
		l.RecordFailure("ip", "alice")
	}
	clock.advance(4 * time.Minute)
	allowed, retry := l.Allow("ip", "alice")
	assert.False(t, allowed)
	assert.Equal(t, 6*time.Minute, retry)

	clock.advance(6*time.Minute + time.Second)
	allowed, _ = l.Allow("ip", "alice")
	assert.True(t, allowed)
}

func TestLoginLimiter_WindowResets(t *testing.T) {
	l, clock := newTestLimiter(t)

	l.RecordFailure("ip", "alice")
	l.RecordFailure("ip", "alice")
	clock.advance(2 * time.Minute)

	locked, _ := l.RecordFailure("ip", "alice")
	assert.False(t, locked, "failures outside the window must not count")
}

func TestLoginLimiter_SuccessClears(t *testing.T) {
	l, _ := newTestLimiter(t)

	l.RecordFailure("ip", "alice")
	l.RecordFailure("ip", "alice")
	l.RecordSuccess("ip", "alice")

	locked, _ := l.RecordFailure("ip", "alice")
	assert.False(t, locked)
}

func TestLoginLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(t)

	l.RecordFailure("ip", "alice")
	clock.advance(2 * time.Minute)
	l.cleanup()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.attempts)
}
