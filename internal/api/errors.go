package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/httputil"
	"github.com/lifeos-app/lifeos/internal/metrics"
	"github.com/lifeos-app/lifeos/internal/middleware"
	"github.com/lifeos-app/lifeos/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeNotFound           = "not_found"
	ErrCodeInternalError      = "internal_error"
	ErrCodeUnauthorized       = middleware.ErrCodeUnauthorized
	ErrCodeIncompatibleSchema = "incompatible_schema"
	ErrCodePayloadTooLarge    = middleware.ErrCodePayloadTooLarge
	ErrCodeCheckpointFailed   = "checkpoint_failed"
	ErrCodeRequestCanceled    = "request_canceled"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string, details ...string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message, details...)
}

// respondServiceError maps an export or import error to a response.
func respondServiceError(c *gin.Context, log *logrus.Logger, op string, err error) {
	var cpErr *models.CheckpointError

	switch {
	case errors.Is(err, models.ErrUserNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, models.ErrIncompatibleSchema):
		respondError(c, http.StatusUnprocessableEntity, ErrCodeIncompatibleSchema, err.Error())
	case errors.Is(err, models.ErrInvalidMode), errors.Is(err, models.ErrInvalidSnapshot):
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
	case errors.As(err, &cpErr):
		middleware.RequestLog(c, log).WithError(err).WithField("checkpoint", cpErr.Checkpoint).Error(op + " failed")
		respondError(c, http.StatusInternalServerError, ErrCodeCheckpointFailed,
			fmt.Sprintf("%s failed at checkpoint %q; earlier checkpoints were committed", op, cpErr.Checkpoint))
	case errors.Is(err, context.Canceled):
		respondError(c, http.StatusServiceUnavailable, ErrCodeRequestCanceled, op+" canceled")
	default:
		middleware.RequestLog(c, log).WithError(err).Error(op + " failed")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, op+" failed")
	}
}

// respondBodyError maps a request body read or decode error.
func respondBodyError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge,
			fmt.Sprintf("document exceeds %d bytes", tooLarge.Limit))

		return
	}

	respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())
}
