package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

const (
	userCacheTTL       = 5 * time.Minute
	negativeCacheTTL   = 30 * time.Second
	maxCacheEntries    = 10000
	cacheCleanupPeriod = 60 * time.Second
)

var errCachedNotFound = errors.New("user not found (cached)")

type cachedUser struct {
	userID    string
	found     bool
	fetchedAt time.Time
}

func (e cachedUser) expired(now time.Time) bool {
	ttl := userCacheTTL
	if !e.found {
		ttl = negativeCacheTTL
	}

	return now.Sub(e.fetchedAt) >= ttl
}

// hashKey keeps raw API keys out of process memory.
func hashKey(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}

// CachedUserLookup wraps a UserLookup with a bounded in-memory cache.
// Failed lookups are cached briefly so a bad key cannot hammer the database.
type CachedUserLookup struct {
	inner UserLookup
	mu    sync.RWMutex
	cache map[string]cachedUser
	now   func() time.Time
}

// NewCachedUserLookup creates a caching wrapper around inner. ctx bounds the
// lifetime of the background eviction goroutine.
func NewCachedUserLookup(ctx context.Context, inner UserLookup) *CachedUserLookup {
	c := &CachedUserLookup{
		inner: inner,
		cache: make(map[string]cachedUser),
		now:   time.Now,
	}
	go c.evictLoop(ctx)

	return c
}

func (c *CachedUserLookup) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(cacheCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.evictExpired()
			c.mu.Unlock()
		}
	}
}

// evictExpired must be called with c.mu held.
func (c *CachedUserLookup) evictExpired() {
	now := c.now()
	for k, v := range c.cache {
		if v.expired(now) {
			delete(c.cache, k)
		}
	}
}

// GetUserByAPIKey returns a cached user ID or delegates to the inner lookup.
func (c *CachedUserLookup) GetUserByAPIKey(ctx context.Context, apiKey string) (string, error) {
	hk := hashKey(apiKey)

	c.mu.RLock()
	entry, ok := c.cache[hk]
	c.mu.RUnlock()

	if ok && !entry.expired(c.now()) {
		if !entry.found {
			return "", errCachedNotFound
		}

		return entry.userID, nil
	}

	userID, err := c.inner.GetUserByAPIKey(ctx, apiKey)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cache) >= maxCacheEntries {
		c.evictExpired()

		for k := range c.cache {
			if len(c.cache) < maxCacheEntries {
				break
			}
			delete(c.cache, k)
		}
	}

	if err != nil {
		c.cache[hk] = cachedUser{fetchedAt: c.now()}
		return "", err
	}

	c.cache[hk] = cachedUser{userID: userID, found: true, fetchedAt: c.now()}

	return userID, nil
}
