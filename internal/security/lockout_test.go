package security_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/security"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGuard(t *testing.T) (*security.FailureGuard, *fakeClock) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := security.NewFailureGuard(ctx, log)
	g.SetClock(clock.now)

	return g, clock
}

func TestFailureGuard_BlocksAtMax(t *testing.T) {
	g, _ := newTestGuard(t)

	for range security.MaxFailures - 1 {
		g.RecordFailure("ip:10.0.0.1")
	}

	if g.IsBlocked("ip:10.0.0.1") {
		t.Fatal("client should not be blocked before max failures")
	}

	g.RecordFailure("ip:10.0.0.1")

	if !g.IsBlocked("ip:10.0.0.1") {
		t.Fatal("client should be blocked at max failures")
	}

	if g.IsBlocked("ip:10.0.0.2") {
		t.Error("other clients must not be affected")
	}
}

func TestFailureGuard_ResetClears(t *testing.T) {
	g, _ := newTestGuard(t)

	for range security.MaxFailures - 1 {
		g.RecordFailure("c")
	}
	g.Reset("c")
	g.RecordFailure("c")

	if g.IsBlocked("c") {
		t.Fatal("reset should restart the count")
	}
}

func TestFailureGuard_LockoutExpires(t *testing.T) {
	g, clock := newTestGuard(t)

	for range security.MaxFailures {
		g.RecordFailure("c")
	}

	clock.advance(security.LockoutPeriod)

	if g.IsBlocked("c") {
		t.Fatal("lockout should expire")
	}

	g.Cleanup()

	if n := g.Tracked(); n != 0 {
		t.Errorf("expired record not cleaned up, %d tracked", n)
	}
}

func TestFailureGuard_WindowRestartsCount(t *testing.T) {
	g, clock := newTestGuard(t)

	for range security.MaxFailures - 1 {
		g.RecordFailure("c")
	}

	clock.advance(security.FailureWindow + time.Second)
	g.RecordFailure("c")

	if g.IsBlocked("c") {
		t.Fatal("failures outside the window should not accumulate")
	}
}
