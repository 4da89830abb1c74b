package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eval_analytics_http_requests_total",
		Help: "HTTP requests handled, by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eval_analytics_http_request_duration_seconds",
		Help:    "HTTP request latency, by method, route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	HTTPRequestInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eval_analytics_http_requests_in_flight",
		Help: "HTTP requests currently being served.",
	})

	WorkspaceMigrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eval_analytics_dataset_workspace_migrations_total",
		Help: "Workspaces processed by the dataset migration, by status.",
	}, []string{"status"})

	MigratedDatasets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eval_analytics_dataset_migrated_datasets_total",
		Help: "Legacy datasets converted to the row based representation.",
	})

	MigratedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eval_analytics_dataset_migrated_rows_total",
		Help: "Dataset rows written by the dataset migration.",
	})
)
