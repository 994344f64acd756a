package ratelimit

import (
	"sync"
	"time"
)

// sweepThreshold is the table size above which Take evicts buckets that have
// been idle for a full window.
const sweepThreshold = 10000

// bucket tracks the token state for a single key.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// Decision is the outcome of a single Take call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter is a token-bucket rate limiter keyed by caller identity
// (user ID for authenticated requests, client address otherwise).
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int
	window  time.Duration
	now     func() time.Time
}

// New creates a Limiter that allows rate requests per window for each key.
func New(rate int, window time.Duration) *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		window:  window,
		now:     time.Now,
	}
}

// perSecond is the refill speed in tokens per second.
func (l *Limiter) perSecond() float64 {
	return float64(l.rate) / l.window.Seconds()
}

// bucketFor returns the refilled bucket for key. Must be called with l.mu held.
func (l *Limiter) bucketFor(key string, now time.Time) *bucket {
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.rate), lastSeen: now}
		l.buckets[key] = b
		return b
	}
	if elapsed := now.Sub(b.lastSeen).Seconds(); elapsed > 0 {
		b.tokens += elapsed * l.perSecond()
		if b.tokens > float64(l.rate) {
			b.tokens = float64(l.rate)
		}
		b.lastSeen = now
	}
	return b
}

// Take consumes one token for key if available and reports the resulting
// quota. The check and the consumption happen under the same lock.
func (l *Limiter) Take(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.buckets) >= sweepThreshold {
		l.sweepLocked(now.Add(-l.window))
	}
	b := l.bucketFor(key, now)

	d := Decision{Limit: l.rate}
	if b.tokens >= 1 {
		b.tokens--
		d.Allowed = true
	}
	d.Remaining = int(b.tokens)
	if d.Remaining < 0 {
		d.Remaining = 0
	}

	deficit := float64(l.rate) - b.tokens
	if deficit <= 0 {
		d.ResetAt = now
	} else {
		d.ResetAt = now.Add(time.Duration(deficit / l.perSecond() * float64(time.Second)))
	}
	return d
}

// Allow is Take without the quota details.
func (l *Limiter) Allow(key string) bool {
	return l.Take(key).Allowed
}

// Sweep drops buckets that have been idle for at least idle and returns how
// many were removed. A dropped bucket is recreated full on next use, which
// is the state it would have refilled to anyway once idle >= window.
func (l *Limiter) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(l.now().Add(-idle))
}

func (l *Limiter) sweepLocked(cutoff time.Time) int {
	n := 0
	for k, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
