package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the chart server. Each instance owns
// its registry so several servers (and tests) can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec   // labels: route, code
	RequestDuration *prometheus.HistogramVec // labels: route
	FetchDuration   prometheus.Histogram
	FetchErrors     prometheus.Counter
	ComputeDuration prometheus.Histogram
	BarsPerChart    prometheus.Histogram
}

// NewMetrics creates and registers all metrics, plus the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stockview_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockview_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockview_fetch_duration_seconds",
			Help:    "Market data fetch latency (series and company info)",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockview_fetch_errors_total",
			Help: "Market data fetches that failed",
		}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockview_compute_duration_seconds",
			Help:    "Indicator computation latency per chart",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		BarsPerChart: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockview_chart_bars",
			Help:    "Number of bars per computed chart",
			Buckets: []float64{1, 5, 25, 70, 130, 260, 1300},
		}),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.FetchDuration,
		m.FetchErrors,
		m.ComputeDuration,
		m.BarsPerChart,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// ObserveFetch implements viewer.Observer.
func (m *Metrics) ObserveFetch(duration time.Duration, err error) {
	m.FetchDuration.Observe(duration.Seconds())

	if err != nil {
		m.FetchErrors.Inc()
	}
}

// ObserveCompute implements viewer.Observer.
func (m *Metrics) ObserveCompute(duration time.Duration, bars int) {
	m.ComputeDuration.Observe(duration.Seconds())
	m.BarsPerChart.Observe(float64(bars))
}
