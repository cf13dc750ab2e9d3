package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics набор prometheus-метрик сервиса.
// Каждый экземпляр держит собственный registry, поэтому New можно вызывать многократно (в тестах).
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBOpenConnections prometheus.Gauge
	DBInUse           prometheus.Gauge
	DBIdle            prometheus.Gauge
	DBWaitCount       prometheus.Gauge

	ReservationsTotal   *prometheus.CounterVec
	ConflictsTotal      *prometheus.CounterVec
	IdempotentReplays   prometheus.Counter
	AvailabilityQueries *prometheus.CounterVec
	RateLimitedTotal    prometheus.Counter
	OutboxPublished     prometheus.Counter
	OutboxFailures      prometheus.Counter
}

// New создает и регистрирует метрики с префиксом serviceName
func New(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Name:      "db_query_duration_seconds",
			Help:      "Database query latency",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation", "status"}),
		DBOpenConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Name:      "db_open_connections",
			Help:      "Number of established connections",
		}),
		DBInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Name:      "db_in_use_connections",
			Help:      "Number of connections currently in use",
		}),
		DBIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Name:      "db_idle_connections",
			Help:      "Number of idle connections",
		}),
		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Name:      "db_wait_count",
			Help:      "Total number of connections waited for",
		}),
		ReservationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "reservations_total",
			Help:      "Committed reservation mutations by action",
		}, []string{"action"}),
		ConflictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "reservation_conflicts_total",
			Help:      "Rejected mutations because the interval was taken",
		}, []string{"action", "source"}),
		IdempotentReplays: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "reservation_idempotent_replays_total",
			Help:      "Create requests answered from an existing idempotency key",
		}),
		AvailabilityQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "availability_queries_total",
			Help:      "Slot and day availability queries",
		}, []string{"kind"}),
		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		OutboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "outbox_published_total",
			Help:      "Outbox events delivered to the broker",
		}),
		OutboxFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Name:      "outbox_failures_total",
			Help:      "Failed outbox publish batches",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUse,
		m.DBIdle,
		m.DBWaitCount,
		m.ReservationsTotal,
		m.ConflictsTotal,
		m.IdempotentReplays,
		m.AvailabilityQueries,
		m.RateLimitedTotal,
		m.OutboxPublished,
		m.OutboxFailures,
	)

	return m
}

// Handler http.Handler для экспорта метрик
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry возвращает registry (для тестов)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Методы ниже безопасны для nil-получателя: метрики могут быть выключены в конфиге.

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ReservationCommitted(action string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(action).Inc()
}

func (m *Metrics) ReservationConflict(action, source string) {
	if m == nil {
		return
	}
	m.ConflictsTotal.WithLabelValues(action, source).Inc()
}

func (m *Metrics) IdempotentReplay() {
	if m == nil {
		return
	}
	m.IdempotentReplays.Inc()
}

func (m *Metrics) AvailabilityQuery(kind string) {
	if m == nil {
		return
	}
	m.AvailabilityQueries.WithLabelValues(kind).Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.RateLimitedTotal.Inc()
}

func (m *Metrics) OutboxBatch(published int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.OutboxFailures.Inc()
		return
	}
	m.OutboxPublished.Add(float64(published))
}
