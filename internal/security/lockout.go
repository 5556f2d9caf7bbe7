// Package security tracks repeated authentication failures so a client
// guessing API keys is locked out for a while.
package security

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Lockout thresholds.
const (
	MaxFailures    = 10
	FailureWindow  = 15 * time.Minute
	LockoutPeriod  = 5 * time.Minute
	cleanupEvery   = 60 * time.Second
	maxTrackedKeys = 10000
)

type failureRecord struct {
	attempts  int
	firstFail time.Time
	lockedAt  time.Time
}

// FailureGuard counts failed authentications per client and blocks
// clients that exceed MaxFailures within FailureWindow.
type FailureGuard struct {
	mu      sync.Mutex
	records map[string]*failureRecord
	log     *logrus.Logger
	now     func() time.Time
}

// NewFailureGuard creates a guard whose cleanup goroutine stops when ctx
// is cancelled.
func NewFailureGuard(ctx context.Context, log *logrus.Logger) *FailureGuard {
	g := &FailureGuard{
		records: make(map[string]*failureRecord),
		log:     log,
		now:     time.Now,
	}
	go g.cleanupLoop(ctx)

	return g
}

// IsBlocked reports whether client is currently locked out.
func (g *FailureGuard) IsBlocked(client string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[client]
	if !ok || rec.lockedAt.IsZero() {
		return false
	}

	return g.now().Sub(rec.lockedAt) < LockoutPeriod
}

// RecordFailure counts a failed attempt by client.
func (g *FailureGuard) RecordFailure(client string) {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	rec, ok := g.records[client]
	if !ok || now.Sub(rec.firstFail) > FailureWindow {
		g.records[client] = &failureRecord{attempts: 1, firstFail: now}
		return
	}

	rec.attempts++
	if rec.attempts >= MaxFailures {
		rec.lockedAt = now
		g.log.WithFields(logrus.Fields{
			"client":   client,
			"attempts": rec.attempts,
		}).Warn("client locked out after repeated auth failures")
	}
}

// Reset clears tracking for client after a successful authentication.
func (g *FailureGuard) Reset(client string) {
	g.mu.Lock()
	delete(g.records, client)
	g.mu.Unlock()
}

func (g *FailureGuard) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

func (g *FailureGuard) cleanup() {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for k, rec := range g.records {
		expiredLock := !rec.lockedAt.IsZero() && now.Sub(rec.lockedAt) >= LockoutPeriod
		expiredWindow := rec.lockedAt.IsZero() && now.Sub(rec.firstFail) >= FailureWindow
		if expiredLock || expiredWindow {
			delete(g.records, k)
		}
	}

	if over := len(g.records) - maxTrackedKeys; over > 0 {
		g.evictOldest(over)
	}
}

// evictOldest removes the n records with the oldest first failure.
// Caller must hold g.mu.
func (g *FailureGuard) evictOldest(n int) {
	type entry struct {
		key  string
		time time.Time
	}

	entries := make([]entry, 0, len(g.records))
	for k, rec := range g.records {
		entries = append(entries, entry{k, rec.firstFail})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].time.Before(entries[j].time)
	})

	for i := range n {
		delete(g.records, entries[i].key)
	}
}
