package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the pipeline-level metrics shared by every component.
type Metrics struct {
	SegmentsRead          *prometheus.CounterVec
	TransactionsAssembled *prometheus.CounterVec
	ValidationFailures    *prometheus.CounterVec
	ProcessingDuration    *prometheus.HistogramVec
	ClaimsPublished       *prometheus.CounterVec
	ErrorsTotal           *prometheus.CounterVec

	NATSConnected      prometheus.Gauge
	NATSReconnects     prometheus.Counter
	NATSCircuitBreaker prometheus.Gauge
}

// NewMetrics creates the pipeline metrics set.
func NewMetrics() *Metrics {
	return &Metrics{
		SegmentsRead: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edistreams",
				Subsystem: "reader",
				Name:      "segments_total",
				Help:      "Total segments tokenized from transmissions",
			},
			[]string{"service"},
		),

		TransactionsAssembled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edistreams",
				Subsystem: "assembler",
				Name:      "transactions_total",
				Help:      "Total transactions assembled into loop trees",
			},
			[]string{"service", "version", "status"},
		),

		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edistreams",
				Subsystem: "validate",
				Name:      "failures_total",
				Help:      "Total validation failures by error class",
			},
			[]string{"service", "class"},
		),

		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "edistreams",
				Subsystem: "processing",
				Name:      "duration_seconds",
				Help:      "Transmission processing duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "operation"},
		),

		ClaimsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edistreams",
				Subsystem: "claims",
				Name:      "published_total",
				Help:      "Total claim documents published",
			},
			[]string{"service", "subject"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edistreams",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total errors by type",
			},
			[]string{"service", "type"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "edistreams",
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "edistreams",
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total NATS reconnections",
			},
		),

		NATSCircuitBreaker: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "edistreams",
				Subsystem: "nats",
				Name:      "circuit_breaker",
				Help:      "NATS circuit breaker status (0=closed, 1=open, 2=half-open)",
			},
		),
	}
}

// RecordSegmentsRead adds to the tokenized segment count.
func (m *Metrics) RecordSegmentsRead(service string, count int) {
	m.SegmentsRead.WithLabelValues(service).Add(float64(count))
}

// RecordTransactionAssembled increments the assembled transaction counter.
// version is the transmission version key; status is "ok" or "error".
func (m *Metrics) RecordTransactionAssembled(service, version, status string) {
	m.TransactionsAssembled.WithLabelValues(service, version, status).Inc()
}

// RecordValidationFailure increments the validation failure counter.
func (m *Metrics) RecordValidationFailure(service, class string) {
	m.ValidationFailures.WithLabelValues(service, class).Inc()
}

// RecordProcessingDuration records how long an operation took.
func (m *Metrics) RecordProcessingDuration(service, operation string, duration time.Duration) {
	m.ProcessingDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordClaimPublished increments the published claim counter.
func (m *Metrics) RecordClaimPublished(service, subject string) {
	m.ClaimsPublished.WithLabelValues(service, subject).Inc()
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(service, errorType string) {
	m.ErrorsTotal.WithLabelValues(service, errorType).Inc()
}

// RecordNATSStatus updates the NATS connection gauge.
func (m *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	m.NATSConnected.Set(value)
}

// RecordNATSReconnect increments the reconnection counter.
func (m *Metrics) RecordNATSReconnect() {
	m.NATSReconnects.Inc()
}

// RecordCircuitBreakerState updates the circuit breaker gauge.
func (m *Metrics) RecordCircuitBreakerState(state int) {
	m.NATSCircuitBreaker.Set(float64(state))
}
