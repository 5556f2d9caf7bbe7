package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lifeos-app/lifeos/internal/metrics"
)

// Route labels. Anything gin did not match is RouteUnmatched so scanners
// cannot grow the label set.
const (
	RouteExport         = "export"
	RouteImport         = "import"
	RouteImportFile     = "import_file"
	RouteImportValidate = "import_validate"
	RouteEvents         = "events"
	RouteHealth         = "health"
	RouteReady          = "ready"
	RouteUnmatched      = "unmatched"
)

var routeLabels = map[string]string{
	"/api/v1/export":          RouteExport,
	"/api/v1/import":          RouteImport,
	"/api/v1/import/file":     RouteImportFile,
	"/api/v1/import/validate": RouteImportValidate,
	"/api/v1/events":          RouteEvents,
	"/api/v1/health":          RouteHealth,
	"/api/v1/ready":           RouteReady,
}

// Route names the portability operation a request was routed to.
func Route(c *gin.Context) string {
	if label, ok := routeLabels[c.FullPath()]; ok {
		return label
	}

	return RouteUnmatched
}

func isImportRoute(route string) bool {
	return route == RouteImport || route == RouteImportFile || route == RouteImportValidate
}

// PrometheusMiddleware records request counts and durations per portability
// route. The events socket stays open for the life of the client, so only
// its upgrades are counted.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := Route(c)

		if isImportRoute(route) && c.Request.ContentLength > 0 {
			metrics.RequestBytes.WithLabelValues(route).Observe(float64(c.Request.ContentLength))
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()

		if route != RouteEvents {
			metrics.RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		}
	}
}
