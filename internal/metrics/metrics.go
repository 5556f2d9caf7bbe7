// Package metrics defines Prometheus metrics for the LifeOS server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lifeos_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds by API route",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_http_requests_total",
			Help: "Total HTTP requests by API route",
		},
		[]string{"method", "route", "status"},
	)

	RequestBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lifeos_http_request_bytes",
			Help:    "Declared request body size for import routes",
			Buckets: prometheus.ExponentialBuckets(1<<10, 4, 10),
		},
		[]string{"route"},
	)

	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_http_rejections_total",
			Help: "Requests rejected by middleware before reaching a handler",
		},
		[]string{"route", "code"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lifeos_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	EventQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lifeos_event_queue_depth",
			Help: "Current portability event queue depth",
		},
	)

	PortabilityOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_portability_operations_total",
			Help: "Export and import operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	PortabilityDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lifeos_portability_duration_seconds",
			Help:    "Export and import duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)

	ImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_import_rows_total",
			Help: "Imported rows by entity kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, RequestBytes, RejectionsTotal, ErrorsTotal,
		WSConnections, EventQueueDepth,
		PortabilityOperations, PortabilityDuration, ImportRows,
	)
}
