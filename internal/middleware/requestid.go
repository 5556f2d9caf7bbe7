package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDKey is the gin context key for the request ID.
	RequestIDKey = "request_id"

	// RequestIDHeader is the HTTP header used to propagate the request ID.
	RequestIDHeader = "X-Request-ID"

	clientRequestIDKey = "client_request_id"
	maxClientIDLen     = 64
)

// RequestID assigns every request a server-generated UUID and echoes it in
// X-Request-ID, where error bodies and CLI messages can quote it. A client
// supplied ID is kept only as a log field, and only when it is short and
// printable.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()

		if clientID := c.GetHeader(RequestIDHeader); clientID != "" {
			if printableID(clientID) {
				c.Set(clientRequestIDKey, clientID)
			} else {
				log.WithField("request_id", id).Debug("dropping malformed client request ID")
			}
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func printableID(s string) bool {
	if len(s) > maxClientIDLen {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}

	return true
}

// RequestLog returns an entry carrying the request's correlation fields: the
// request ID, the client's own ID when it sent a usable one, the portability
// route and the authenticated user.
func RequestLog(c *gin.Context, log *logrus.Logger) *logrus.Entry {
	fields := logrus.Fields{
		"request_id": c.GetString(RequestIDKey),
		"route":      Route(c),
	}

	if clientID := c.GetString(clientRequestIDKey); clientID != "" {
		fields[clientRequestIDKey] = clientID
	}

	if uid := c.GetString(UserIDKey); uid != "" {
		fields["user_id"] = uid
	}

	return log.WithFields(fields)
}
