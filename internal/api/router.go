package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/lifeos-app/lifeos/internal/domain"
	"github.com/lifeos-app/lifeos/internal/middleware"
	"github.com/lifeos-app/lifeos/internal/security"
	"github.com/lifeos-app/lifeos/internal/ws"
)

// RouterDeps holds all dependencies needed by the router. Hub is nil when
// the events socket is disabled.
type RouterDeps struct {
	Log            *logrus.Logger
	DB             HealthChecker
	Migrations     MigrationChecker
	Hub            *ws.Hub
	Exporter       domain.ExportService
	Importer       domain.ImportService
	UserLookup     middleware.UserLookup
	CORSOrigins    []string
	Version        string
	MaxImportBytes int64
}

// Router-level limits.
const (
	// multipartOverhead leaves room for form fields and part headers.
	multipartOverhead = 1 << 20
	rateLimitPerMin   = 120
	rateBurst         = 30
)

// setupMiddleware configures all middleware on the Gin engine.
func setupMiddleware(r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(middleware.PrometheusMiddleware())
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.LimitImportBody(deps.MaxImportBytes + multipartOverhead))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:           1 * time.Hour,
		AllowCredentials: false,
	}))
}

// registerRoutes sets up all API route handlers on the given router group.
func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	var clients ClientCounter
	if deps.Hub != nil {
		clients = deps.Hub
	}

	health := NewHealthHandler(deps.DB, deps.Migrations, clients, log, deps.Version)
	portability := NewPortabilityHandler(deps.Exporter, deps.Importer, log, deps.MaxImportBytes)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	lookup := middleware.NewCachedUserLookup(ctx, deps.UserLookup)

	api.Use(middleware.AuthMiddleware(lookup, security.NewFailureGuard(ctx, log), log))
	api.Use(middleware.NewRateLimiter(ctx, rateLimitPerMin, rateBurst).Handler())

	api.GET("/export", portability.Export)
	api.POST("/import", portability.Import)
	api.POST("/import/file", portability.ImportFile)
	api.POST("/import/validate", portability.Validate)

	if deps.Hub != nil {
		api.GET("/events", eventsHandler(ctx, log, deps.Hub, deps.CORSOrigins, lookup))
	}
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}

// NewMetricsHandler serves Prometheus metrics for the dedicated metrics listener.
func NewMetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}
