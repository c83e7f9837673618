package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/walletledger/internal/domain"
	"github.com/iho/walletledger/internal/usecase"
)

const namespace = "walletledger"

var amountBuckets = []float64{1, 10, 100, 1000, 10000, 100000, 1000000, 10000000}

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Engine metrics
	Mutations           *prometheus.CounterVec
	MutationDuration    *prometheus.HistogramVec
	MutationAmount      *prometheus.HistogramVec
	InsufficientBalance prometheus.Counter
	InternalErrors      *prometheus.CounterVec
	SuspiciousActivity  *prometheus.CounterVec
	StorageRetries      *prometheus.CounterVec

	// Orchestrated operations (transfer, payment, refund, deposit, withdraw)
	Operations      *prometheus.CounterVec
	OperationAmount *prometheus.HistogramVec

	// Event dispatch
	EventsDelivered *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
	EventsDropped   *prometheus.CounterVec

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "balance_mutations_total",
				Help:      "Balance mutations by kind, direction and outcome",
			},
			[]string{"kind", "direction", "outcome"},
		),
		MutationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "balance_mutation_duration_seconds",
				Help:      "Duration of balance mutations including lock wait",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"kind", "direction"},
		),
		MutationAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "balance_mutation_amount",
				Help:      "Committed mutation amounts",
				Buckets:   amountBuckets,
			},
			[]string{"direction"},
		),
		InsufficientBalance: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insufficient_balance_total",
			Help:      "Decreases rejected for insufficient balance",
		}),
		InternalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "internal_errors_total",
				Help:      "Internal engine errors by reason",
			},
			[]string{"reason"},
		),
		SuspiciousActivity: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "suspicious_activity_total",
				Help:      "Suspicious activity alerts by rule",
			},
			[]string{"rule"},
		),
		StorageRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_retries_total",
				Help:      "Storage operations replayed after a transient conflict, by reason",
			},
			[]string{"reason"},
		),

		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Orchestrated operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OperationAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_amount",
				Help:      "Successful operation amounts",
				Buckets:   amountBuckets,
			},
			[]string{"operation"},
		),

		EventsDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_delivered_total",
				Help:      "Audit and alert events delivered",
			},
			[]string{"type"},
		),
		EventsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_failed_total",
				Help:      "Audit and alert events whose delivery failed",
			},
			[]string{"type"},
		),
		EventsDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_dropped_total",
				Help:      "Audit and alert events dropped on a full buffer",
			},
			[]string{"type"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// RecordMutation implements usecase.MetricsRecorder.
func (m *Metrics) RecordMutation(kind domain.TransactionKind, direction domain.Direction, outcome string, duration time.Duration, amount decimal.Decimal) {
	m.Mutations.WithLabelValues(string(kind), string(direction), outcome).Inc()
	m.MutationDuration.WithLabelValues(string(kind), string(direction)).Observe(duration.Seconds())

	switch outcome {
	case usecase.OutcomeSuccess:
		m.MutationAmount.WithLabelValues(string(direction)).Observe(amount.Abs().InexactFloat64())
	case usecase.OutcomeInsufficient:
		m.InsufficientBalance.Inc()
	}
}

// RecordInternalError implements usecase.MetricsRecorder.
func (m *Metrics) RecordInternalError(reason domain.InternalReason) {
	m.InternalErrors.WithLabelValues(string(reason)).Inc()
}

// RecordSuspiciousActivity implements usecase.MetricsRecorder.
func (m *Metrics) RecordSuspiciousActivity(rule string) {
	m.SuspiciousActivity.WithLabelValues(rule).Inc()
}

// RecordStorageRetry counts one replay of a storage operation.
func (m *Metrics) RecordStorageRetry(reason string) {
	m.StorageRetries.WithLabelValues(reason).Inc()
}

// RecordOperation implements usecase.OperationRecorder.
func (m *Metrics) RecordOperation(operation, outcome string, amount decimal.Decimal) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
	if outcome == usecase.OutcomeSuccess {
		m.OperationAmount.WithLabelValues(operation).Observe(amount.InexactFloat64())
	}
}

// RecordEventDelivered implements eventpublisher.DeliveryRecorder.
func (m *Metrics) RecordEventDelivered(eventType string) {
	m.EventsDelivered.WithLabelValues(eventType).Inc()
}

// RecordEventFailed implements eventpublisher.DeliveryRecorder.
func (m *Metrics) RecordEventFailed(eventType string) {
	m.EventsFailed.WithLabelValues(eventType).Inc()
}

// RecordEventDropped implements eventpublisher.DeliveryRecorder.
func (m *Metrics) RecordEventDropped(eventType string) {
	m.EventsDropped.WithLabelValues(eventType).Inc()
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRateLimitHit counts a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimitHit() {
	m.RateLimitHits.Inc()
}
