package security

import "time"

// SetClock replaces the guard's time source.
func (g *FailureGuard) SetClock(now func() time.Time) { g.now = now }

// Cleanup runs one cleanup pass.
func (g *FailureGuard) Cleanup() { g.cleanup() }

// Tracked returns the number of tracked clients.
func (g *FailureGuard) Tracked() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return len(g.records)
}
