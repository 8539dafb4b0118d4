package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// API metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIAuthFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "api_auth_failures_total",
			Help: "Total number of API authentication failures",
		},
	)
)

// Publish pipeline metrics
var (
	NewslettersPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletters_published_total",
			Help: "Total number of publish attempts by result",
		},
		[]string{"result"}, // published, upload_failed, persist_failed, directory_unavailable
	)

	AssetOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_operations_total",
			Help: "Total number of asset store operations",
		},
		[]string{"operation", "result"}, // upload|delete, success|failure
	)
)

// Broadcast metrics
var (
	BroadcastDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_deliveries_total",
			Help: "Total number of per-recipient delivery attempts by result",
		},
		[]string{"result"}, // sent, failed
	)

	BroadcastDeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_delivery_duration_seconds",
			Help:    "Duration of a single recipient delivery",
			Buckets: prometheus.DefBuckets,
		},
	)

	BroadcastRecipients = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_recipients",
			Help:    "Number of recipients per broadcast",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	BroadcastInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "broadcast_deliveries_in_flight",
			Help: "Number of recipient deliveries currently in progress",
		},
	)
)

// Database metrics
var (
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"query"},
	)
)
