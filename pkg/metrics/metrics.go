package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Burndown simulation wall time (seconds).
	SimulationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simulation_duration_seconds",
			Help:    "Resource-leveling simulation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"kind"}, // kind: burndown, schedule
	)

	// Schedule recomputations by trigger.
	ScheduleRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_recompute_count",
			Help: "Total number of schedule recomputations",
		},
		[]string{"trigger"}, // trigger: http, snapshot, runner
	)

	// Scope alerts published by the forecast runner.
	ScopeAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scope_alert_count",
			Help: "Total number of scope alerts published",
		},
		[]string{"status"}, // status: scope_creep, major_issues
	)

	// Progress snapshots recorded.
	SnapshotsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "progress_snapshots_recorded_total",
			Help: "Total number of progress snapshots recorded",
		},
	)

	// Projection cache outcomes.
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projection_cache_requests_total",
			Help: "Projection cache lookups by outcome",
		},
		[]string{"outcome"}, // outcome: hit, miss, bypass
	)

	// HTTP request latency (seconds).
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// MQ consume latency (milliseconds).
	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)
)

// ObserveSimulation records a simulation duration.
func ObserveSimulation(kind string, duration time.Duration) {
	SimulationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// IncrementRecompute counts one schedule recomputation.
func IncrementRecompute(trigger string) {
	ScheduleRecomputes.WithLabelValues(trigger).Inc()
}

// IncrementScopeAlert counts one published scope alert.
func IncrementScopeAlert(status string) {
	ScopeAlerts.WithLabelValues(status).Inc()
}

// IncrementCache counts one cache lookup outcome.
func IncrementCache(outcome string) {
	CacheRequests.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequestDuration records one HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordMQConsumeLatency records one MQ message handling duration.
func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

// Slow database queries observed by the pool tracer.
var SlowQueries = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "db_slow_query_duration_seconds",
		Help:    "Duration of database queries over the slow threshold",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 8), // 100ms to ~12s
	},
)

// IncrementSlowQuery records one slow query.
func IncrementSlowQuery(duration time.Duration) {
	SlowQueries.Observe(duration.Seconds())
}
