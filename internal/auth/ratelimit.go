package auth

import (
	"sync"
	"time"
)

// LoginLimiter throttles failed login attempts per client IP and username.
// After MaxAttempts failures inside Window the pair is locked for Lockout.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptRecord
	cfg      LimiterConfig
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type attemptRecord struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

type LimiterConfig struct {
	MaxAttempts     int
	Window          time.Duration
	Lockout         time.Duration
	CleanupInterval time.Duration
}

// NewLoginLimiter starts a limiter; call Stop to end its cleanup goroutine.
func NewLoginLimiter(cfg LimiterConfig) *LoginLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Lockout <= 0 {
		cfg.Lockout = 30 * time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	l := &LoginLimiter{
		attempts: make(map[string]*attemptRecord),
		cfg:      cfg,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *LoginLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func key(ip, username string) string {
	return ip + "|" + username
}

// Allow reports whether another attempt may be made, and if not, how long
// the caller should wait.
func (l *LoginLimiter) Allow(ip, username string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[key(ip, username)]
	if !ok {
		return true, 0
	}
	if now.Before(rec.lockedUntil) {
		return false, rec.lockedUntil.Sub(now)
	}
	if now.Sub(rec.firstAttempt) > l.cfg.Window || rec.count < l.cfg.MaxAttempts {
		return true, 0
	}
	return false, l.cfg.Lockout
}

// RecordFailure counts a failed attempt and reports whether the pair is now locked.
func (l *LoginLimiter) RecordFailure(ip, username string) (bool, time.Duration) {
	now := l.now()
	k := key(ip, username)

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[k]
	if !ok || now.Sub(rec.firstAttempt) > l.cfg.Window {
		rec = &attemptRecord{firstAttempt: now}
		l.attempts[k] = rec
	}

	rec.count++
	if rec.count >= l.cfg.MaxAttempts {
		rec.lockedUntil = now.Add(l.cfg.Lockout)
		return true, l.cfg.Lockout
	}
	return false, 0
}

// RecordSuccess forgets earlier failures for the pair.
func (l *LoginLimiter) RecordSuccess(ip, username string) {
	l.mu.Lock()
	delete(l.attempts, key(ip, username))
	l.mu.Unlock()
}

func (l *LoginLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

func (l *LoginLimiter) cleanup() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, rec := range l.attempts {
		if now.Sub(rec.firstAttempt) > l.cfg.Window && !now.Before(rec.lockedUntil) {
			delete(l.attempts, k)
		}
	}
}
