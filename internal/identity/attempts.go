package identity

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type attemptEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// AttemptLimiter throttles failed sign-in attempts per account.
type AttemptLimiter struct {
	mu      sync.Mutex
	entries map[string]*attemptEntry
	r       rate.Limit
	burst   int
	now     func() time.Time
}

// NewAttemptLimiter allows perMinute failures per key, with the same burst. perMinute <= 0 disables limiting.
func NewAttemptLimiter(perMinute int) *AttemptLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &AttemptLimiter{
		entries: make(map[string]*attemptEntry),
		r:       rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		now:     time.Now,
	}
}

// Allow reports whether key may attempt a sign-in. It does not consume anything.
func (l *AttemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	e, ok := l.entries[key]
	if !ok {
		return true
	}
	return e.lim.TokensAt(now) >= 1
}

// RecordFailure consumes one attempt for key.
func (l *AttemptLimiter) RecordFailure(key string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &attemptEntry{lim: rate.NewLimiter(l.r, l.burst)}
		l.entries[key] = e
	}
	e.seen = now
	e.lim.AllowN(now, 1)
}

func (l *AttemptLimiter) prune(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.seen) > 10*time.Minute {
			delete(l.entries, k)
		}
	}
}
