package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Engine metrics
	SafetyChecks       *prometheus.CounterVec
	RulesFired         *prometheus.CounterVec
	AlertsCreated      *prometheus.CounterVec
	SuggestionsScored  prometheus.Histogram
	PredictionAccuracy *prometheus.CounterVec
	EngineLatency      *prometheus.HistogramVec

	// Enrichment metrics
	EnrichmentRequests prometheus.Counter
	EnrichmentFailures prometheus.Counter
	EnrichmentLatency  prometheus.Histogram

	// Outbox related metrics
	OutboxEventsProcessed   prometheus.Counter
	OutboxEventsFailed      prometheus.Counter
	OutboxProcessingLatency prometheus.Histogram
	OutboxQueueSize         prometheus.Gauge
	OutboxRetries           *prometheus.CounterVec

	// Database metrics
	DatabaseOperations  *prometheus.CounterVec
	DatabaseLatency     *prometheus.HistogramVec
	DatabaseConnections prometheus.Gauge
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		SafetyChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "safety_checks_total",
			Help:      "Total contraindication checks by resulting safety status",
		}, []string{"status"}),
		RulesFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rules_fired_total",
			Help:      "Total clinical rules fired by rule id and severity",
		}, []string{"rule_id", "severity"}),
		AlertsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "alerts_created_total",
			Help:      "Total clinical alerts created by type",
		}, []string{"type"}),
		SuggestionsScored: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "diagnosis_suggestions_returned",
			Help:      "Suggestions returned per request",
			Buckets:   []float64{0, 1, 2, 5, 10, 20},
		}),
		PredictionAccuracy: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "prediction_outcomes_total",
			Help:      "Recorded actual outcomes by accuracy",
		}, []string{"accurate"}),
		EngineLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "engine_operation_seconds",
			Help:      "Latency of engine operations",
		}, []string{"operation"}),

		EnrichmentRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "enrichment_requests_total",
			Help:      "Total enrichment requests attempted",
		}),
		EnrichmentFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "enrichment_failures_total",
			Help:      "Enrichment calls that degraded to rule-only output",
		}),
		EnrichmentLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "enrichment_latency_seconds",
			Help:      "Latency of enrichment calls",
		}),

		OutboxEventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_events_processed_total",
			Help:      "Total outbox events processed",
		}),
		OutboxEventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_events_failed_total",
			Help:      "Total outbox events that failed processing",
		}),
		OutboxProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_processing_latency_seconds",
			Help:      "Latency of outbox event processing",
		}),
		OutboxQueueSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_queue_size",
			Help:      "Current number of pending outbox events",
		}),
		OutboxRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "outbox_retries_total",
			Help:      "Outbox event retries by event type",
		}, []string{"event_type"}),

		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operations_total",
			Help:      "Total database operations",
		}, []string{"operation", "table"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_latency_seconds",
			Help:      "Latency of database operations",
		}, []string{"operation", "table"}),
		DatabaseConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_connections",
			Help:      "Current number of database connections",
		}),
	}
}
