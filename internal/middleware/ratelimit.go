package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"medichain-server/internal/utils"
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket. Buckets refill at rate tokens
// per second up to burst and are pruned after an hour of inactivity.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64
	now     func() time.Time
}

// NewRateLimiter creates a RateLimiter allowing burst requests immediately
// and rate requests per second sustained.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.burst, lastSeen: now}
		l.buckets[key] = b
		l.prune(now)
	}

	elapsed := now.Sub(b.lastSeen).Seconds()
	b.tokens += elapsed * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *RateLimiter) prune(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > time.Hour {
			delete(l.buckets, key)
		}
	}
}

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			utils.TooManyRequests(c, "Too many requests, please try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}
