package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medbook"

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the Prometheus collectors shared by every medbook process.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	SagaTransitions     *prometheus.CounterVec
	SagaIgnored         *prometheus.CounterVec
	ReservationOutcomes *prometheus.CounterVec
	KafkaPublished      *prometheus.CounterVec
	KafkaConsumed       *prometheus.CounterVec
	KafkaLatency        *prometheus.HistogramVec
	OutboxPending       prometheus.Gauge
	HTTPRequests        *prometheus.CounterVec
	gatherer            prometheus.Gatherer
}

// NewDefault registers metrics with the default Prometheus registry.
func NewDefault() *Metrics {
	return newMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// New registers metrics with the provided registry. A nil registry gets a fresh
// isolated one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return newMetrics(registry, registry)
}

func newMetrics(registerer prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		SagaTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_transitions_total",
			Help:      "Booking saga state transitions.",
		}, []string{"from", "to", "event"}),
		SagaIgnored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_ignored_events_total",
			Help:      "Events the booking saga did not accept in its current state.",
		}, []string{"state", "event"}),
		ReservationOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_reservations_total",
			Help:      "Time slot reservation attempts by outcome.",
		}, []string{"outcome"}),
		KafkaPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_published_total",
			Help:      "Messages published by topic and result.",
		}, []string{"topic", "result"}),
		KafkaConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_consumed_total",
			Help:      "Messages consumed by topic and result.",
		}, []string{"topic", "result"}),
		KafkaLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_operation_seconds",
			Help:      "Kafka publish and handle latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		OutboxPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_pending",
			Help:      "Unpublished outbox rows seen by the last relay poll.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		gatherer: gatherer,
	}

	registerer.MustRegister(
		m.SagaTransitions,
		m.SagaIgnored,
		m.ReservationOutcomes,
		m.KafkaPublished,
		m.KafkaConsumed,
		m.KafkaLatency,
		m.OutboxPending,
		m.HTTPRequests,
	)

	return m
}

// Handler returns an HTTP handler that exposes metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) IncSagaTransition(from, to, event string) {
	if m == nil {
		return
	}
	m.SagaTransitions.WithLabelValues(from, to, event).Inc()
}

func (m *Metrics) IncSagaIgnored(state, event string) {
	if m == nil {
		return
	}
	m.SagaIgnored.WithLabelValues(state, event).Inc()
}

func (m *Metrics) IncReservation(outcome string) {
	if m == nil {
		return
	}
	m.ReservationOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObservePublish(topic string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.KafkaPublished.WithLabelValues(topic, result(err)).Inc()
	m.KafkaLatency.WithLabelValues("publish").Observe(d.Seconds())
}

func (m *Metrics) ObserveConsume(topic string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.KafkaConsumed.WithLabelValues(topic, result(err)).Inc()
	m.KafkaLatency.WithLabelValues("consume").Observe(d.Seconds())
}

func (m *Metrics) SetOutboxPending(n int) {
	if m == nil {
		return
	}
	m.OutboxPending.Set(float64(n))
}

func (m *Metrics) IncHTTPRequest(method string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
