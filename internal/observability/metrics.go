// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketlink_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketlink_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ProviderListingLatency records end-to-end latency of provider listing queries.
	ProviderListingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "marketlink_provider_listing_latency_seconds",
		Help:    "Provider listing query latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// ModerationActions counts moderation transitions by action type.
	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketlink_moderation_actions_total",
		Help: "Total number of moderation actions by type",
	}, []string{"action"})

	// InquiriesCreated counts accepted provider inquiries.
	InquiriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketlink_inquiries_created_total",
		Help: "Total number of inquiries accepted",
	})

	// CacheResults counts cache-aside lookups by outcome (hit/miss).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketlink_cache_results_total",
		Help: "Total cache-aside lookups by outcome",
	}, []string{"outcome"})
)

// TrackListingQuery returns a function that records listing latency when
// called (e.g. defer).
func TrackListingQuery() func() {
	start := time.Now()
	return func() {
		ProviderListingLatency.Observe(time.Since(start).Seconds())
	}
}

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
