// Package httputil provides shared HTTP response helpers.
package httputil

import "github.com/gin-gonic/gin"

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	RequestID string   `json:"request_id,omitempty"`
	Details   []string `json:"details,omitempty"`
}

// RespondError writes a standardized JSON error response and aborts the request.
func RespondError(c *gin.Context, status int, code, message string, details ...string) {
	resp := ErrorResponse{Code: code, Message: message, Details: details}

	if rid, ok := c.Get("request_id"); ok {
		resp.RequestID, _ = rid.(string)
	}

	c.AbortWithStatusJSON(status, resp)
}
