package ws

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	replayMaxLen = 200
	replayMaxAge = 15 * time.Minute
)

// Event is the message sent to WebSocket clients.
type Event struct {
	Type   string          `json:"type"`
	ID     uint64          `json:"id"`
	UserID string          `json:"-"`
	Data   json.RawMessage `json:"data,omitempty"`
	Time   time.Time       `json:"time"`
}

// SubscribeMsg is sent by a reconnecting client to replay missed events.
type SubscribeMsg struct {
	Type        string `json:"type"`
	LastEventID uint64 `json:"last_event_id"`
}

// ResetMsg tells the client the requested events are gone.
type ResetMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// replayLog numbers events per user and keeps the recent ones so a client
// that reconnects mid-import can catch up on progress.
type replayLog struct {
	mu     sync.Mutex
	next   map[string]uint64
	events map[string][]Event
	now    func() time.Time
}

func newReplayLog() *replayLog {
	return &replayLog{
		next:   make(map[string]uint64),
		events: make(map[string][]Event),
		now:    time.Now,
	}
}

// record assigns the next ID for the user and stores the event.
func (l *replayLog) record(userID, eventType string, data json.RawMessage) Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next[userID]++

	evt := Event{Type: eventType, ID: l.next[userID], UserID: userID, Data: data, Time: l.now()}

	buf := append(l.trimmed(userID), evt)
	if len(buf) > replayMaxLen {
		buf = buf[len(buf)-replayMaxLen:]
	}

	l.events[userID] = buf

	return evt
}

// trimmed drops expired events. Callers hold l.mu.
func (l *replayLog) trimmed(userID string) []Event {
	buf := l.events[userID]
	cutoff := l.now().Add(-replayMaxAge)

	start := 0
	for start < len(buf) && buf[start].Time.Before(cutoff) {
		start++
	}

	return buf[start:]
}

// since returns the user's events after lastID. ok is false when events
// after lastID have already been evicted.
func (l *replayLog) since(userID string, lastID uint64) (events []Event, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	buf := l.trimmed(userID)
	l.events[userID] = buf

	if len(buf) == 0 {
		return nil, lastID >= l.next[userID]
	}

	if lastID+1 < buf[0].ID {
		return nil, false
	}

	for i, evt := range buf {
		if evt.ID > lastID {
			return append([]Event(nil), buf[i:]...), true
		}
	}

	return nil, true
}

// sweep forgets users whose events have all expired.
func (l *replayLog) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for userID := range l.events {
		if len(l.trimmed(userID)) == 0 {
			delete(l.events, userID)
			delete(l.next, userID)
		}
	}
}
