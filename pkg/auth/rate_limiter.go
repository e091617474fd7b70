package auth

import (
	"sync"
	"time"
)

// RateLimiter is a per-key token bucket. The middleware keys it by client IP
// before authentication and by user id after.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*bucket
	maxTokens  int
	refillRate time.Duration
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter allows roughly perMinute requests per key, refilling one
// token at a steady rate.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		buckets:    make(map[string]*bucket),
		maxTokens:  perMinute,
		refillRate: time.Minute / time.Duration(perMinute),
	}
}

// Allow consumes a token for key, reporting whether the request may proceed.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.maxTokens, lastRefill: now}
		l.buckets[key] = b
	}

	if refill := int(now.Sub(b.lastRefill) / l.refillRate); refill > 0 {
		b.tokens += refill
		if b.tokens > l.maxTokens {
			b.tokens = l.maxTokens
		}
		b.lastRefill = now
	}

	if b.tokens == 0 {
		return false
	}
	b.tokens--

	// Opportunistic eviction of idle buckets keeps the map bounded without a
	// background goroutine.
	if len(l.buckets) > 4096 {
		for k, stale := range l.buckets {
			if now.Sub(stale.lastRefill) > time.Hour {
				delete(l.buckets, k)
			}
		}
	}
	return true
}
