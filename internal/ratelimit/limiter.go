// Package ratelimit provides per-key token buckets over golang.org/x/time/rate.
// The HTTP and gRPC APIs key them by client IP.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultRequests = 100
	DefaultWindow   = 15 * time.Minute
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter allows up to requests events per window for each key, with a
// burst of requests. Keys idle for longer than window are dropped by Sweep.
type KeyedLimiter struct {
	mu      sync.Mutex
	keys    map[string]*entry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type Option func(*KeyedLimiter)

func WithClock(now func() time.Time) Option {
	return func(l *KeyedLimiter) { l.now = now }
}

func New(requests int, window time.Duration, opts ...Option) *KeyedLimiter {
	if requests <= 0 {
		requests = DefaultRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}

	l := &KeyedLimiter{
		keys:    make(map[string]*entry),
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   requests,
		idleTTL: window,
		now:     time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Allow reports whether one more event for key fits in its budget.
func (l *KeyedLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	e, ok := l.keys[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.keys[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// Sweep evicts keys that have been idle longer than the window and returns
// how many were removed.
func (l *KeyedLimiter) Sweep() int {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k, e := range l.keys {
		if e.lastSeen.Before(cutoff) {
			delete(l.keys, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}

// RunSweeper calls Sweep every interval until stop is closed.
func (l *KeyedLimiter) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			l.Sweep()
		case <-stop:
			return
		}
	}
}
