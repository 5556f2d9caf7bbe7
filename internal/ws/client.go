package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout       = 10 * time.Second
	readLimit          = 4096
	clientSendBuffer   = 64
	maxConnLifetime    = 4 * time.Hour
	keyRefreshInterval = 15 * time.Minute
	keyRefreshTimeout  = 10 * time.Second
	pingInterval       = 30 * time.Second
	pingTimeout        = 10 * time.Second
	maxMissedPongs     = int32(2)
)

// KeyValidator re-checks that an API key still maps to a user.
type KeyValidator interface {
	GetUserByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// Client is a single WebSocket connection managed by the Hub.
type Client struct {
	UserID string

	hub         *Hub
	conn        *websocket.Conn
	log         *logrus.Entry
	apiKey      string
	validator   KeyValidator
	connectedAt time.Time

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewClient creates a Client for userID on conn.
func NewClient(hub *Hub, conn *websocket.Conn, userID string, validator KeyValidator, apiKey string) *Client {
	return &Client{
		UserID:      userID,
		hub:         hub,
		conn:        conn,
		log:         hub.log.WithField("user_id", userID),
		apiKey:      apiKey,
		validator:   validator,
		connectedAt: time.Now(),
		send:        make(chan []byte, clientSendBuffer),
	}
}

// trySend queues msg without blocking. It reports false when the buffer is
// full or the client is closed.
func (c *Client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads client messages until the connection closes. The only
// message understood is a subscribe request for replay.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown
	}()

	c.conn.SetReadLimit(readLimit)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				c.log.WithField("status", status).Debug("client disconnected")
			}

			return
		}

		c.handleMessage(data)
	}
}

func (c *Client) handleMessage(data []byte) {
	var msg SubscribeMsg
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "subscribe" {
		return
	}

	if c.hub.Replay(c, msg.LastEventID) {
		return
	}

	reset, err := json.Marshal(ResetMsg{Type: "reset", Reason: "requested events are no longer available"})
	if err == nil {
		c.trySend(reset)
	}
}

// WritePump writes queued messages to the connection. It pings the peer,
// re-validates the API key periodically and enforces a maximum lifetime.
func (c *Client) WritePump(ctx context.Context) {
	defer c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown

	lifetime := time.NewTimer(time.Until(c.connectedAt.Add(maxConnLifetime)))
	defer lifetime.Stop()

	refresh := time.NewTicker(keyRefreshInterval)
	defer refresh.Stop()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	var missed atomic.Int32

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			if c.ping(ctx, &missed) {
				return
			}
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusGoingAway, "closing") //nolint:errcheck // best-effort
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()

			if err != nil {
				c.log.WithError(err).Debug("write failed")
				return
			}
		case <-refresh.C:
			if !c.keyStillValid(ctx) {
				return
			}
		case <-lifetime.C:
			c.log.Info("closing WebSocket: max connection lifetime exceeded")
			c.conn.Close(websocket.StatusNormalClosure, "max connection lifetime exceeded") //nolint:errcheck // best-effort

			return
		}
	}
}

// ping reports whether the connection should be closed.
func (c *Client) ping(ctx context.Context, missed *atomic.Int32) bool {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := c.conn.Ping(pingCtx)
	cancel()

	if err == nil {
		missed.Store(0)
		return false
	}

	if missed.Add(1) >= maxMissedPongs {
		c.log.Debug("closing: consecutive missed pongs")
		return true
	}

	return false
}

func (c *Client) keyStillValid(ctx context.Context) bool {
	if c.validator == nil {
		return true
	}

	refreshCtx, cancel := context.WithTimeout(ctx, keyRefreshTimeout)
	userID, err := c.validator.GetUserByAPIKey(refreshCtx, c.apiKey)
	cancel()

	if err != nil || userID != c.UserID {
		c.log.Info("closing WebSocket: API key no longer valid")
		c.conn.Close(websocket.StatusPolicyViolation, "authentication expired") //nolint:errcheck // best-effort

		return false
	}

	return true
}
