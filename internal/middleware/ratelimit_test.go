package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lifeos-app/lifeos/internal/middleware"
)

func limitedRouter(rl *middleware.RateLimiter, userID string) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.UserIDKey, userID)
		}
		c.Next()
	})
	r.Use(rl.Handler())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func hit(r *gin.Engine, remote string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.RemoteAddr = remote
	r.ServeHTTP(w, req)

	return w.Code
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := limitedRouter(middleware.NewRateLimiter(ctx, 1, 2), "")

	for i := range 3 {
		code := hit(r, "1.2.3.4:1234")
		if i < 2 && code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
		if i == 2 && code != http.StatusTooManyRequests {
			t.Fatalf("request %d: expected 429, got %d", i, code)
		}
	}
}

func TestRateLimiter_KeysByUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := middleware.NewRateLimiter(ctx, 1, 1)

	if code := hit(limitedRouter(rl, "u1"), "1.1.1.1:1000"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	// Same address, different user.
	if code := hit(limitedRouter(rl, "u2"), "1.1.1.1:1000"); code != http.StatusOK {
		t.Fatalf("different user should not be limited, got %d", code)
	}

	if code := hit(limitedRouter(rl, "u1"), "2.2.2.2:1000"); code != http.StatusTooManyRequests {
		t.Fatalf("same user from another address should be limited, got %d", code)
	}
}
