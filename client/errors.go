package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a structured error response from the LifeOS API.
type APIError struct {
	StatusCode int      `json:"-"`
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	RequestID  string   `json:"request_id,omitempty"`
	Details    []string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("lifeos: %d %s: %s (request_id=%s)", e.StatusCode, e.Code, e.Message, e.RequestID)
	}

	return fmt.Sprintf("lifeos: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func statusIs(err error, code int) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == code
}

// IsNotFound reports a 404, e.g. an API key whose user no longer exists.
func IsNotFound(err error) bool { return statusIs(err, http.StatusNotFound) }

// IsUnauthorized reports a missing or rejected API key.
func IsUnauthorized(err error) bool { return statusIs(err, http.StatusUnauthorized) }

// IsIncompatibleSchema reports a document written by an incompatible schema version.
func IsIncompatibleSchema(err error) bool { return statusIs(err, http.StatusUnprocessableEntity) }

// IsRateLimited returns true if the error is a 429 rate limit.
func IsRateLimited(err error) bool { return statusIs(err, http.StatusTooManyRequests) }

// IsCheckpointFailure reports an import that stopped part way. Checkpoints
// before the failing one were committed.
func IsCheckpointFailure(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.Code == "checkpoint_failed"
}

// parseAPIError decodes a JSON error body, falling back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}

	return apiErr
}
