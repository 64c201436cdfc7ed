package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capstonehub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "capstonehub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RequestsSubmitted counts capstone requests accepted into the pipeline.
	RequestsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capstonehub_requests_submitted_total",
		Help: "Total number of capstone requests submitted",
	})

	// RequestsReviewed counts review decisions by outcome.
	RequestsReviewed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capstonehub_requests_reviewed_total",
		Help: "Total number of capstone request review decisions",
	}, []string{"decision"})

	// SweepRuns counts expiry sweeper executions by trigger source.
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capstonehub_sweep_runs_total",
		Help: "Total number of expiry sweep executions",
	}, []string{"trigger"})

	// SweepRejected counts requests auto-rejected by the expiry sweeper.
	SweepRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capstonehub_sweep_rejected_total",
		Help: "Total number of requests auto-rejected by the expiry sweeper",
	})

	// NotificationsDispatched counts notification deliveries by channel and result.
	NotificationsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capstonehub_notifications_dispatched_total",
		Help: "Total number of notification deliveries by channel and result",
	}, []string{"channel", "result"})
)

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

// TracingContextKey is the type for context keys used in tracing.
type TracingContextKey string

const (
	// TraceIDKey is the context key for trace ID.
	TraceIDKey TracingContextKey = "trace_id"
	// SpanIDKey is the context key for span ID.
	SpanIDKey TracingContextKey = "span_id"
	// CorrelationIDKey is the context key for correlation ID.
	CorrelationIDKey TracingContextKey = "correlation_id"
)

// ExtractTraceID returns the trace ID from the context if set.
func ExtractTraceID(ctx context.Context) string {
	if id := ctx.Value(TraceIDKey); id != nil {
		return id.(string)
	}
	return ""
}

// ExtractCorrelationIDFromTracing returns the correlation ID from the context if set.
func ExtractCorrelationIDFromTracing(ctx context.Context) string {
	if id := ctx.Value(CorrelationIDKey); id != nil {
		return id.(string)
	}
	return ""
}

// NewSpanContext returns a context with trace and span ID values set.
func NewSpanContext(traceID, spanID string) context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, TraceIDKey, traceID)
	ctx = context.WithValue(ctx, SpanIDKey, spanID)
	return ctx
}

// WithCorrelationIDFromTracing returns a context with the correlation ID set.
func WithCorrelationIDFromTracing(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// GenerateTraceID returns a new trace ID string.
func GenerateTraceID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

// GenerateSpanID returns a new span ID string.
func GenerateSpanID() string {
	return strconv.FormatInt(time.Now().UnixNano()%10000000000, 36)
}
