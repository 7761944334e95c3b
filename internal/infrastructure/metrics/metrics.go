// Package metrics exposes invoice generation counters and latencies in the
// Prometheus text format. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "fatura"

// Pipeline stages observed by StageTimer
const (
	StageResolve  = "resolve"
	StageRead     = "read"
	StageFilter   = "filter"
	StageAssemble = "assemble"
	StageVerify   = "verify"
)

// Metrics owns a private registry with the service collectors
type Metrics struct {
	registry *prometheus.Registry

	invoices      *prometheus.CounterVec
	invoiceTime   prometheus.Histogram
	stageTime     *prometheus.HistogramVec
	parseWarnings prometheus.Counter
	requests      *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
}

// New registers the collectors, plus the Go runtime and process collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invoices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "invoices_total",
			Help:      "Invoice generation attempts by outcome.",
		}, []string{"outcome"}),
		invoiceTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "invoice_duration_seconds",
			Help:      "Time to resolve, read, filter and render one invoice.",
			Buckets:   prometheus.DefBuckets,
		}),
		stageTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"stage"}),
		parseWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "parse_warnings_total",
			Help:      "Cells replaced by a default value while building statements.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.invoices,
		m.invoiceTime,
		m.stageTime,
		m.parseWarnings,
		m.requests,
		m.requestTime,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry; a nil receiver serves 404
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveInvoice counts one generation attempt with its outcome and duration
func (m *Metrics) ObserveInvoice(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.invoices.WithLabelValues(outcome).Inc()
	m.invoiceTime.Observe(elapsed.Seconds())
}

// StageTimer starts timing a stage; call the returned func when it ends
func (m *Metrics) StageTimer(stage string) func() {
	if m == nil {
		return func() {}
	}
	timer := prometheus.NewTimer(m.stageTime.WithLabelValues(stage))
	return func() { timer.ObserveDuration() }
}

// AddParseWarnings adds n to the parse warning counter
func (m *Metrics) AddParseWarnings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.parseWarnings.Add(float64(n))
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestTime.WithLabelValues(route).Observe(elapsed.Seconds())
}
