package middleware_test

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lifeos-app/lifeos/internal/middleware"
)

func newHeadersRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.SecurityHeaders())
	r.GET("/api/v1/export", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func TestSecurityHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", http.NoBody)
	newHeadersRouter().ServeHTTP(w, req)

	expected := map[string]string{
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
		"Referrer-Policy":              "no-referrer",
		"Content-Security-Policy":      "default-src 'none'; frame-ancestors 'none'",
		"Cross-Origin-Resource-Policy": "same-origin",
		"Permissions-Policy":           "camera=(), microphone=(), geolocation=()",
		"Cache-Control":                "no-store, private",
		"Pragma":                       "no-cache",
	}

	for header, want := range expected {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}

	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS sent over plain HTTP: %q", got)
	}

	if got := w.Header().Get("X-Download-Options"); got != "" {
		t.Errorf("X-Download-Options on a non-export route: %q", got)
	}
}

func TestSecurityHeaders_ExportOverTLS(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/export", http.NoBody)
	req.TLS = &tls.ConnectionState{}
	newHeadersRouter().ServeHTTP(w, req)

	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=63072000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}

	if got := w.Header().Get("X-Download-Options"); got != "noopen" {
		t.Errorf("X-Download-Options = %q, want noopen", got)
	}
}
