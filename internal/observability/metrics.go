package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulseboard_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pulseboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthzDenials counts authorization denials by resource and action.
	AuthzDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulseboard_authz_denials_total",
		Help: "Total number of authorization denials by resource and action",
	}, []string{"resource", "action"})

	// VoteToggles counts vote toggles by outcome (added/removed).
	VoteToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulseboard_vote_toggles_total",
		Help: "Total number of feedback vote toggles by outcome",
	}, []string{"outcome"})
)

// RecordAuthzDenial increments the denial counter for the resource/action pair.
func RecordAuthzDenial(resource, action string) {
	AuthzDenials.WithLabelValues(resource, action).Inc()
}

// RecordVoteToggle increments the vote toggle counter for the outcome.
func RecordVoteToggle(outcome string) {
	VoteToggles.WithLabelValues(outcome).Inc()
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
