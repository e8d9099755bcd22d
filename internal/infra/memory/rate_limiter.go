package memory

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a fixed-window counter per key, for single-instance deployments.
type RateLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	start time.Time
	count int
}

func NewRateLimiter(limit int, per time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(limit, per, time.Now)
}

// NewRateLimiterWithClock is test-only for deterministic windows.
func NewRateLimiterWithClock(limit int, per time.Duration, clock func() time.Time) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  per,
		clock:   clock,
		windows: make(map[string]*window),
	}
}

// Allow counts one hit for key and reports whether it is within the limit.
func (l *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &window{start: now}
		l.windows[key] = w
		l.pruneLocked(now)
	}
	w.count++
	return w.count <= l.limit, nil
}

// pruneLocked drops expired windows so idle keys do not accumulate.
func (l *RateLimiter) pruneLocked(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
}
