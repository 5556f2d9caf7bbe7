package db

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

type recordedEvent struct {
	eventType string
	userID    string
	data      json.RawMessage
}

type fakeBroadcaster struct {
	events []recordedEvent
}

func (f *fakeBroadcaster) BroadcastEvent(eventType, userID string, data json.RawMessage) {
	f.events = append(f.events, recordedEvent{eventType, userID, data})
}

func newTestBridge() (*NotifyBridge, *fakeBroadcaster) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	hub := &fakeBroadcaster{}

	return NewNotifyBridge(log, nil, hub), hub
}

func TestHandleNotification_Forwards(t *testing.T) {
	b, hub := newTestBridge()

	b.handleNotification(&pgconn.Notification{
		Channel: EventChannel,
		Payload: `{"user_id":"u1","type":"import.completed","data":{"status":"success"}}`,
	})

	if len(hub.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(hub.events))
	}

	got := hub.events[0]
	if got.eventType != "import.completed" || got.userID != "u1" {
		t.Errorf("unexpected event %+v", got)
	}

	if string(got.data) != `{"status":"success"}` {
		t.Errorf("unexpected data %s", got.data)
	}
}

func TestHandleNotification_DropsInvalid(t *testing.T) {
	b, hub := newTestBridge()

	for _, payload := range []string{
		`not json`,
		`{"type":"import.completed"}`,
		`{"user_id":"u1"}`,
	} {
		b.handleNotification(&pgconn.Notification{Channel: EventChannel, Payload: payload})
	}

	if len(hub.events) != 0 {
		t.Errorf("expected no events, got %v", hub.events)
	}
}

func TestNextBackoff_Capped(t *testing.T) {
	d := initialBackoff
	for range 10 {
		d = nextBackoff(d)
	}

	if d > maxBackoff*5/4 {
		t.Errorf("backoff %v exceeds cap with jitter", d)
	}

	if d < maxBackoff*3/4 {
		t.Errorf("backoff %v below cap with jitter", d)
	}
}
