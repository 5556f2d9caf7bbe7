package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxBuckets caps the number of tracked callers.
const maxBuckets = 100_000

// RateLimiter is a token bucket limiter keyed by the authenticated user,
// falling back to the client IP before authentication has run.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    float64
	burst   float64
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// NewRateLimiter creates a RateLimiter allowing ratePerMin requests per
// minute with the given burst. Stale buckets are evicted until ctx ends.
func NewRateLimiter(ctx context.Context, ratePerMin, burst int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    float64(ratePerMin) / 60,
		burst:   float64(burst),
	}
	go rl.cleanupLoop(ctx)

	return rl
}

func (rl *RateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	const maxAge = 10 * time.Minute

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for k, b := range rl.buckets {
				if now.Sub(b.lastFill) > maxAge {
					delete(rl.buckets, k)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// allow reports whether key may proceed, consuming one token.
func (rl *RateLimiter) allow(key string, now time.Time) (allowed, full bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		if len(rl.buckets) >= maxBuckets {
			return false, true
		}

		b = &bucket{tokens: rl.burst, lastFill: now}
		rl.buckets[key] = b
	}

	b.tokens = min(rl.burst, b.tokens+now.Sub(b.lastFill).Seconds()*rl.rate)
	b.lastFill = now

	if b.tokens < 1 {
		return false, false
	}

	b.tokens--

	return true, false
}

// Handler returns Gin middleware applying the limit.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(UserIDKey)
		if key == "" {
			// Proxy headers are untrusted (SetTrustedProxies(nil)), so this is the peer address.
			key = "ip:" + c.ClientIP()
		}

		allowed, full := rl.allow(key, time.Now())
		if full {
			respondError(c, http.StatusTooManyRequests, ErrCodeRateLimited, "too many clients")
			return
		}

		if !allowed {
			c.Header("Retry-After", "60")
			respondError(c, http.StatusTooManyRequests, ErrCodeRateLimited, "rate limit exceeded")

			return
		}

		c.Next()
	}
}
