// Package api provides HTTP handlers for the LifeOS server.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db         HealthChecker
	migrations MigrationChecker
	events     ClientCounter
	log        *logrus.Logger
	version    string
	startTime  time.Time
}

// NewHealthHandler creates a HealthHandler. Any checker may be nil.
func NewHealthHandler(db HealthChecker, migrations MigrationChecker, events ClientCounter, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		db:         db,
		migrations: migrations,
		events:     events,
		log:        log,
		version:    version,
		startTime:  time.Now(),
	}
}

type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	EventClients  int     `json:"event_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type readinessResponse struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	SchemaVersion int64             `json:"schema_version,omitempty"`
}

// Liveness handles GET /api/v1/health.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Database:      "connected",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	// Database state is informational here; Readiness gates traffic.
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.HealthCheck(ctx); err != nil {
			resp.Database = "disconnected"
		}
	} else {
		resp.Database = "not_configured"
	}

	if h.events != nil {
		resp.EventClients = h.events.ClientCount()
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready: the database must answer and the
// schema must be fully migrated.
func (h *HealthHandler) Readiness(c *gin.Context) {
	resp := readinessResponse{
		Status: "ready",
		Checks: map[string]string{"database": "ok", "schema": "ok"},
	}

	fail := func(check, state string) {
		resp.Checks[check] = state
		resp.Status = "not_ready"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if h.db == nil {
		fail("database", "not_configured")
	} else if err := h.db.HealthCheck(ctx); err != nil {
		h.log.WithError(err).Error("readiness: database health check failed")
		fail("database", "error")
	}

	switch {
	case resp.Checks["database"] != "ok":
		resp.Checks["schema"] = "unknown"
	case h.migrations != nil:
		current, pending, err := h.migrations(ctx)
		resp.SchemaVersion = current

		if err != nil {
			h.log.WithError(err).Error("readiness: schema check failed")
			fail("schema", "error")
		} else if pending {
			fail("schema", "pending_migrations")
		}
	}

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}
