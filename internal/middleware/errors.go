package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/lifeos-app/lifeos/internal/httputil"
	"github.com/lifeos-app/lifeos/internal/metrics"
)

// Error codes written by the middleware chain, before a portability handler runs.
const (
	ErrCodeUnauthorized    = "unauthorized"
	ErrCodeTooManyFailures = "too_many_failures"
	ErrCodeRateLimited     = "rate_limited"
	ErrCodePayloadTooLarge = "payload_too_large"
)

// respondError aborts with the shared error body and counts the rejection
// under the route it was aimed at.
func respondError(c *gin.Context, status int, code, message string, details ...string) {
	metrics.RejectionsTotal.WithLabelValues(Route(c), code).Inc()
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message, details...)
}
