package ws

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	h := NewHub(log)

	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	t.Cleanup(cancel)

	return h
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()

	select {
	case msg := <-c.send:
		var evt Event
		if err := json.Unmarshal(msg, &evt); err != nil {
			t.Fatalf("decoding event: %v", err)
		}

		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	return Event{}
}

func TestHub_DeliversOnlyToOwner(t *testing.T) {
	h := newTestHub(t)

	alice := NewClient(h, nil, "alice", nil, "")
	bob := NewClient(h, nil, "bob", nil, "")
	h.Register(alice)
	h.Register(bob)
	waitFor(t, func() bool { return h.ClientCount() == 2 })

	h.BroadcastEvent("import.started", "alice", json.RawMessage(`{"mode":"merge"}`))

	evt := receive(t, alice)
	if evt.Type != "import.started" || evt.ID != 1 {
		t.Errorf("unexpected event %+v", evt)
	}

	if string(evt.Data) != `{"mode":"merge"}` {
		t.Errorf("unexpected data %s", evt.Data)
	}

	h.BroadcastEvent("import.completed", "alice", nil)
	receive(t, alice)

	select {
	case msg := <-bob.send:
		t.Fatalf("bob received %s", msg)
	default:
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	h := newTestHub(t)

	c := NewClient(h, nil, "alice", nil, "")
	h.Register(c)
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	h.Unregister(c)
	waitFor(t, func() bool { return h.ClientCount() == 0 })

	if c.trySend([]byte("x")) {
		t.Error("send on closed client should fail")
	}
}

func TestHub_PerUserLimit(t *testing.T) {
	h := newTestHub(t)

	for range maxClientsPerUser + 1 {
		h.Register(NewClient(h, nil, "alice", nil, ""))
	}

	h.Register(NewClient(h, nil, "bob", nil, ""))
	waitFor(t, func() bool { return h.ClientCount() == maxClientsPerUser+1 })
}

func TestHub_ReplayAfterReconnect(t *testing.T) {
	h := newTestHub(t)

	for _, typ := range []string{"import.started", "import.checkpoint", "import.completed"} {
		h.BroadcastEvent(typ, "alice", nil)
	}

	c := NewClient(h, nil, "alice", nil, "")
	c.handleMessage([]byte(`{"type":"subscribe","last_event_id":1}`))

	if evt := receive(t, c); evt.ID != 2 || evt.Type != "import.checkpoint" {
		t.Errorf("unexpected first replayed event %+v", evt)
	}

	if evt := receive(t, c); evt.ID != 3 {
		t.Errorf("unexpected second replayed event %+v", evt)
	}
}

func TestReplayLog_ExpiredEventsRequestReset(t *testing.T) {
	l := newReplayLog()
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.record("alice", "import.started", nil)
	l.record("alice", "import.completed", nil)

	now = now.Add(replayMaxAge + time.Minute)

	if _, ok := l.since("alice", 0); ok {
		t.Error("expected evicted events to be reported unavailable")
	}

	if _, ok := l.since("alice", 2); !ok {
		t.Error("a client that saw everything needs no reset")
	}

	l.sweep()

	if len(l.events) != 0 || len(l.next) != 0 {
		t.Error("sweep should forget idle users")
	}
}

func TestHub_DropsOversizedEvent(t *testing.T) {
	h := newTestHub(t)

	c := NewClient(h, nil, "alice", nil, "")
	h.Register(c)
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	big := make([]byte, maxBroadcastPayload)
	for i := range big {
		big[i] = 'a'
	}

	h.BroadcastEvent("import.completed", "alice", json.RawMessage(`"`+string(big)+`"`))
	h.BroadcastEvent("import.failed", "alice", nil)

	if evt := receive(t, c); evt.Type != "import.failed" {
		t.Errorf("expected oversized event to be dropped, got %+v", evt)
	}
}
