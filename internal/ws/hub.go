// Package ws streams portability events to connected WebSocket clients.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/metrics"
)

const (
	broadcastBuffer = 256
	registerBuffer  = 64

	maxClients        = 1000
	maxClientsPerUser = 20

	// maxBroadcastPayload matches the NOTIFY payload ceiling.
	maxBroadcastPayload = 8000

	drainTimeout  = 3 * time.Second
	sweepInterval = 5 * time.Minute
)

type userMessage struct {
	userID string
	msg    []byte
}

// Hub tracks connected clients per user. All client map mutations happen in
// the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	perUser    map[string]int
	register   chan *Client
	unregister chan *Client
	broadcast  chan userMessage
	shutdown   chan struct{}
	done       chan struct{}
	count      atomic.Int64
	log        *logrus.Logger
	replay     *replayLog
}

// NewHub creates a new Hub.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		perUser:    make(map[string]int),
		register:   make(chan *Client, registerBuffer),
		unregister: make(chan *Client, registerBuffer),
		broadcast:  make(chan userMessage, broadcastBuffer),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
		replay:     newReplayLog(),
	}
}

// Run is the hub event loop. It returns after Shutdown or when ctx ends,
// having drained connected clients.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	sweep := time.NewTicker(sweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			h.drainClients()
			return
		case <-h.shutdown:
			h.drainClients()
			return
		case <-sweep.C:
			h.replay.sweep()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case m := <-h.broadcast:
			h.deliver(m)
		}
	}
}

func (h *Hub) add(c *Client) {
	if len(h.clients) >= maxClients {
		h.log.Warn("global connection limit reached, dropping client")
		c.closeSend()

		return
	}

	if h.perUser[c.UserID] >= maxClientsPerUser {
		h.log.WithField("user_id", c.UserID).Warn("per-user connection limit reached, dropping client")
		c.closeSend()

		return
	}

	h.clients[c] = true
	h.perUser[c.UserID]++
	h.updateCount()
	h.log.WithFields(logrus.Fields{"user_id": c.UserID, "total": len(h.clients)}).Debug("client registered")
}

func (h *Hub) remove(c *Client) {
	if !h.clients[c] {
		return
	}

	delete(h.clients, c)
	c.closeSend()

	h.perUser[c.UserID]--
	if h.perUser[c.UserID] <= 0 {
		delete(h.perUser, c.UserID)
	}

	h.updateCount()
	h.log.WithFields(logrus.Fields{"user_id": c.UserID, "total": len(h.clients)}).Debug("client unregistered")
}

// deliver sends m to every client of the user. Slow clients are dropped.
func (h *Hub) deliver(m userMessage) {
	for c := range h.clients {
		if c.UserID != m.userID {
			continue
		}

		select {
		case c.send <- m.msg:
		default:
			h.log.WithField("user_id", c.UserID).Warn("client send buffer full, disconnecting")
			h.remove(c)
		}
	}
}

func (h *Hub) updateCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.WSConnections.Set(float64(len(h.clients)))
}

// BroadcastEvent numbers the event, keeps it for replay and queues it for
// the user's clients. It implements db.Broadcaster.
func (h *Hub) BroadcastEvent(eventType, userID string, data json.RawMessage) {
	evt := h.replay.record(userID, eventType, data)

	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	if len(msg) > maxBroadcastPayload {
		h.log.WithFields(logrus.Fields{
			"user_id":      userID,
			"type":         eventType,
			"payload_size": len(msg),
		}).Warn("dropping oversized event")

		return
	}

	select {
	case h.broadcast <- userMessage{userID: userID, msg: msg}:
	default:
		h.log.Warn("broadcast channel full, dropping event")
	}
}

// Replay queues the user's events after lastEventID on c. It returns false
// when some of them are no longer available.
func (h *Hub) Replay(c *Client, lastEventID uint64) bool {
	events, ok := h.replay.since(c.UserID, lastEventID)
	if !ok {
		return false
	}

	for _, evt := range events {
		msg, err := json.Marshal(evt)
		if err != nil {
			continue
		}

		if !c.trySend(msg) {
			break
		}
	}

	return true
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	default:
		h.log.Warn("register channel full, dropping client")
		c.closeSend()
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	default:
		// Run has exited and already closed every client.
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Shutdown drains clients and blocks until Run has returned.
func (h *Hub) Shutdown() {
	close(h.shutdown)
	<-h.done
}

// drainClients tells every client the server is going away, waits briefly
// for send buffers to flush, then closes them.
func (h *Hub) drainClients() {
	defer func() {
		for c := range h.clients {
			c.closeSend()
			delete(h.clients, c)
		}

		h.perUser = make(map[string]int)
		h.updateCount()
	}()

	if len(h.clients) == 0 {
		return
	}

	h.log.WithField("clients", len(h.clients)).Info("draining WebSocket clients")

	shutdownMsg := []byte(`{"type":"shutdown","data":{"message":"server shutting down"}}`)
	for c := range h.clients {
		c.trySend(shutdownMsg)
	}

	deadline := time.After(drainTimeout)
	ticker := time.NewTicker(50 * time.Millisecond) //nolint:mnd // poll interval
	defer ticker.Stop()

	for !h.flushed() {
		select {
		case <-deadline:
			h.log.Warn("WebSocket drain timeout, closing remaining clients")
			return
		case <-ticker.C:
		}
	}
}

func (h *Hub) flushed() bool {
	for c := range h.clients {
		if len(c.send) > 0 {
			return false
		}
	}

	return true
}
