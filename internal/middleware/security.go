package middleware

import "github.com/gin-gonic/gin"

// Snapshots hold a user's whole history; nothing is cacheable.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cross-Origin-Resource-Policy", "same-origin"},
	{"Permissions-Policy", "camera=(), microphone=(), geolocation=()"},
	{"Cache-Control", "no-store, private"},
	{"Pragma", "no-cache"},
}

const hstsValue = "max-age=63072000; includeSubDomains"

// SecurityHeaders sets response headers for the portability API. HSTS is
// only sent over TLS. Export downloads must not be opened in place.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}

		if c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		if Route(c) == RouteExport {
			h.Set("X-Download-Options", "noopen")
		}

		c.Next()
	}
}
