package api

import (
	"context"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/middleware"
	"github.com/lifeos-app/lifeos/internal/ws"
)

// eventsHandler upgrades GET /api/v1/events to a WebSocket that streams the
// caller's portability events.
func eventsHandler(appCtx context.Context, log *logrus.Logger, hub *ws.Hub, origins []string, lookup ws.KeyValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := getUserID(c)
		if userID == "" {
			return
		}

		// Kept for periodic re-validation.
		apiKey := middleware.ExtractBearerToken(c)

		// CORS origins double as WebSocket origin patterns; config validation
		// rejects wildcards.
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns:       origins,
			CompressionMode:      websocket.CompressionContextTakeover,
			CompressionThreshold: 128,
		})
		if err != nil {
			log.WithError(err).Warn("websocket accept failed")
			return
		}

		client := ws.NewClient(hub, conn, userID, lookup, apiKey)
		hub.Register(client)

		// Cancel on server shutdown or when the request ends.
		wsCtx, cancel := context.WithCancel(appCtx)
		defer cancel()

		go func() {
			select {
			case <-c.Request.Context().Done():
				cancel()
			case <-wsCtx.Done():
			}
		}()

		go client.WritePump(wsCtx)
		client.ReadPump(wsCtx)
	}
}
