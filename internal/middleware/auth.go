// Package middleware provides HTTP middleware for the LifeOS server.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/security"
)

// UserIDKey is the gin context key holding the authenticated user ID.
const UserIDKey = "user_id"

// authTimingFloor is the minimum response time for rejected requests so
// valid and invalid keys cannot be told apart by latency.
const authTimingFloor = 50 * time.Millisecond

// UserLookup resolves an API key to a user ID.
type UserLookup interface {
	GetUserByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// truncateKey returns at most the first 4 characters of key followed by "...".
func truncateKey(key string) string {
	if len(key) > 4 {
		return key[:4] + "..."
	}

	return key
}

func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// AuthMiddleware authenticates requests via Bearer token and stores the
// resolved user ID under UserIDKey. A non-nil guard locks out clients that
// keep presenting invalid keys.
func AuthMiddleware(lookup UserLookup, guard *security.FailureGuard, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		client := "ip:" + c.ClientIP()
		if guard != nil && guard.IsBlocked(client) {
			c.Header("Retry-After", strconv.Itoa(int(security.LockoutPeriod.Seconds())))
			respondError(c, http.StatusTooManyRequests, ErrCodeTooManyFailures, "too many failed authentication attempts")

			return
		}

		apiKey := ExtractBearerToken(c)
		if apiKey == "" {
			respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "missing or invalid authorization header")
			return
		}

		userID, err := lookup.GetUserByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			logAuthFailure(log, c, apiKey)

			if guard != nil {
				guard.RecordFailure(client)
			}

			respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid api key")

			return
		}

		if guard != nil {
			guard.Reset(client)
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// ExtractBearerToken extracts the API key from the Authorization header.
// Browsers cannot set headers on WebSocket upgrades, so the events socket
// also accepts the key in the api_key query parameter.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	if header == "" && isWebSocketUpgrade(c.Request) {
		return c.Query("api_key")
	}

	return ""
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func logAuthFailure(log *logrus.Logger, c *gin.Context, apiKey string) {
	log.WithFields(logrus.Fields{
		"client_ip":  c.ClientIP(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"user_agent": c.Request.UserAgent(),
		"request_id": c.GetString(RequestIDKey),
		"key_prefix": truncateKey(apiKey),
	}).Warn("authentication failed: invalid api key")
}
