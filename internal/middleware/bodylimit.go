package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// LimitImportBody caps request bodies at maxBytes. A declared Content-Length
// over the cap is refused before any of the upload is read; chunked or
// understated bodies fail at the cap while the handler decodes them.
func LimitImportBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			c.Header("Connection", "close")
			respondError(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge,
				fmt.Sprintf("%s body of %d bytes exceeds the %d byte limit", Route(c), c.Request.ContentLength, maxBytes))

			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
