package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/middleware"
)

// getUserID returns the authenticated user ID, responding 400 when it is
// not a UUID.
func getUserID(c *gin.Context) string {
	uid := c.GetString(middleware.UserIDKey)

	if _, err := uuid.Parse(uid); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid user id")
		return ""
	}

	return uid
}

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, ok := c.Get(middleware.RequestIDKey); ok {
			fields["request_id"] = rid
		}
		if uid := c.GetString(middleware.UserIDKey); uid != "" {
			fields["user_id"] = uid
		}

		log.WithFields(fields).Info("request")
	}
}
