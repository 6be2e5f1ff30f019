// Package metrics exposes Prometheus metrics for the debugger.
//
// Collectors are registered on a private registry rather than the global one
// so that tests and the check command can build as many as they like.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ai_debugger"

// Collector holds every metric the service records.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	executionsTotal    *prometheus.CounterVec
	executionDuration  *prometheus.HistogramVec
	explanationsTotal  *prometheus.CounterVec
	explanationLatency prometheus.Histogram
}

// New creates a Collector with Go runtime and process collectors attached.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		executionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "executions_total",
				Help:      "Pipeline runs by outcome (none, syntax, runtime, timeout, error)",
			},
			[]string{"kind"},
		),
		executionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "execution_duration_seconds",
				Help:      "Wall-clock time of pipeline runs",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"kind"},
		),
		explanationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "explanations_total",
				Help:      "Explanations by source (ai, fallback, unavailable, static)",
			},
			[]string{"source"},
		),
		explanationLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "explanation_duration_seconds",
				Help:      "Time spent waiting for the explanation collaborator",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
		),
	}
}

// RegisterInFlight exposes a gauge backed by fn, typically the executor's
// count of busy process slots.
func (c *Collector) RegisterInFlight(fn func() int64) {
	promauto.With(c.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "executions_in_flight",
			Help:      "Interpreter processes currently running",
		},
		func() float64 { return float64(fn()) },
	)
}

// ObserveHTTP records one completed HTTP request.
func (c *Collector) ObserveHTTP(method, path string, status int, d time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObserveExecution records one pipeline run.
func (c *Collector) ObserveExecution(kind string, d time.Duration) {
	c.executionsTotal.WithLabelValues(kind).Inc()
	c.executionDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveExplanation records one explanation.
func (c *Collector) ObserveExplanation(source string, d time.Duration) {
	c.explanationsTotal.WithLabelValues(source).Inc()
	c.explanationLatency.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
