package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type published struct {
	userID    string
	eventType string
}

type mockPublisher struct {
	mu    sync.Mutex
	calls []published
}

func (m *mockPublisher) Publish(userID, eventType string, _ any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, published{userID, eventType})
}

func (m *mockPublisher) getCalls() []published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]published(nil), m.calls...)
}

func TestEventWorker_Publishes(t *testing.T) {
	pub := &mockPublisher{}
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	w := NewEventWorker(pub, log, 10)
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	w.Enqueue(&Event{UserID: "u1", Type: EventImportStarted})

	time.Sleep(50 * time.Millisecond)
	cancel()

	calls := pub.getCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(calls))
	}

	if calls[0].eventType != EventImportStarted || calls[0].userID != "u1" {
		t.Errorf("unexpected publish %+v", calls[0])
	}
}

func TestEventWorker_DropsWhenFull(t *testing.T) {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	// Not started, so nothing drains.
	w := NewEventWorker(&mockPublisher{}, log, 2)

	w.Enqueue(&Event{Type: "a"})
	w.Enqueue(&Event{Type: "b"})

	done := make(chan struct{})
	go func() {
		w.Enqueue(&Event{Type: "c"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked when queue was full")
	}

	if len(w.events) != 2 {
		t.Errorf("queue len = %d, want 2", len(w.events))
	}
}

func TestEventWorker_StopDrains(t *testing.T) {
	pub := &mockPublisher{}
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	w := NewEventWorker(pub, log, 100)
	for range 5 {
		w.Enqueue(&Event{UserID: "u1", Type: EventImportCheckpoint})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Run(ctx)

	if got := len(pub.getCalls()); got != 5 {
		t.Errorf("expected 5 drained events, got %d", got)
	}
}
