package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lifeos-app/lifeos/internal/api"
)

type fakeDB struct{ err error }

func (f fakeDB) HealthCheck(context.Context) error { return f.err }

func migrationsAt(version int64, pending bool, err error) api.MigrationChecker {
	return func(context.Context) (int64, bool, error) { return version, pending, err }
}

func TestLiveness_ReturnsOK(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(nil, nil, nil, testLogger(), "test-v1")

	r := gin.New()
	r.GET("/health", h.Liveness)

	w := doRequest(r, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}

	if body["version"] != "test-v1" {
		t.Errorf("expected version 'test-v1', got %v", body["version"])
	}

	if body["database"] != "not_configured" {
		t.Errorf("expected database 'not_configured', got %v", body["database"])
	}
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		db         api.HealthChecker
		migrations api.MigrationChecker
		wantCode   int
		wantSchema string
	}{
		{"ready", fakeDB{}, migrationsAt(3, false, nil), http.StatusOK, "ok"},
		{"pending migrations", fakeDB{}, migrationsAt(2, true, nil), http.StatusServiceUnavailable, "pending_migrations"},
		{"schema error", fakeDB{}, migrationsAt(0, false, errors.New("boom")), http.StatusServiceUnavailable, "error"},
		{"database down", fakeDB{err: errors.New("down")}, migrationsAt(3, false, nil), http.StatusServiceUnavailable, "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := api.NewHealthHandler(tc.db, tc.migrations, nil, testLogger(), "test")

			r := gin.New()
			r.GET("/ready", h.Readiness)

			w := doRequest(r, http.MethodGet, "/ready", "")
			if w.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d: %s", tc.wantCode, w.Code, w.Body.String())
			}

			var body struct {
				Checks map[string]string `json:"checks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			if body.Checks["schema"] != tc.wantSchema {
				t.Errorf("expected schema check %q, got %q", tc.wantSchema, body.Checks["schema"])
			}
		})
	}
}
