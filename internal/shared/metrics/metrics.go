package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Domain metrics
	PaymentsTotal       *prometheus.CounterVec
	PaymentAmountTotal  *prometheus.CounterVec
	RefundAmountTotal   *prometheus.CounterVec
	OrdersTotal         *prometheus.CounterVec
	InventoryOperations *prometheus.CounterVec
	GatewayCallsTotal   *prometheus.CounterVec
	EventsPublished     *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// New creates a new Metrics instance backed by its own registry,
// so tests can build as many instances as they need.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "datalake"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		PaymentsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "status_changes_total",
				Help:      "Payment status changes by resulting status",
			},
			[]string{"status", "provider"},
		),
		PaymentAmountTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "completed_amount_total",
				Help:      "Sum of completed payment amounts",
			},
			[]string{"currency"},
		),
		RefundAmountTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "refunded_amount_total",
				Help:      "Sum of refunded amounts",
			},
			[]string{"currency"},
		),
		OrdersTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "transitions_total",
				Help:      "Order creations and status transitions",
			},
			[]string{"status"},
		),
		InventoryOperations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "product",
				Name:      "inventory_operations_total",
				Help:      "Inventory updates by operation",
			},
			[]string{"operation"},
		),
		GatewayCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gateway",
				Name:      "calls_total",
				Help:      "Payment gateway calls by provider and outcome",
			},
			[]string{"provider", "operation", "outcome"},
		),
		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "published_total",
				Help:      "Domain events published by type",
			},
			[]string{"type"},
		),

		CacheHitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"cache"},
		),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCodeToString(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPaymentStatus records a payment reaching a status.
func (m *Metrics) RecordPaymentStatus(status, provider string) {
	m.PaymentsTotal.WithLabelValues(status, provider).Inc()
}

// RecordPaymentCompleted adds a completed payment amount.
func (m *Metrics) RecordPaymentCompleted(currency string, amount float64) {
	m.PaymentAmountTotal.WithLabelValues(currency).Add(amount)
}

// RecordRefund adds a refunded amount.
func (m *Metrics) RecordRefund(currency string, amount float64) {
	m.RefundAmountTotal.WithLabelValues(currency).Add(amount)
}

// RecordOrderStatus records an order reaching a status.
func (m *Metrics) RecordOrderStatus(status string) {
	m.OrdersTotal.WithLabelValues(status).Inc()
}

// RecordInventoryOperation records an inventory update.
func (m *Metrics) RecordInventoryOperation(operation string) {
	m.InventoryOperations.WithLabelValues(operation).Inc()
}

// RecordGatewayCall records a payment gateway call outcome.
func (m *Metrics) RecordGatewayCall(provider, operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.GatewayCallsTotal.WithLabelValues(provider, operation, outcome).Inc()
}

// RecordEventPublished records a published domain event.
func (m *Metrics) RecordEventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
