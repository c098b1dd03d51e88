package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alihaimran285-byte/final-project-sub001/core/school"
	"github.com/alihaimran285-byte/final-project-sub001/storage/gateway"
)

// Metrics:
// - http_requests_total: requests by route, method & status
// - http_request_duration_seconds: request latency by route & method
// - store_calls_total: gateway calls by backend, operation, kind & outcome
// - store_call_duration_seconds: gateway call latency by backend & operation
// - store_using_primary: 1 while the primary store serves calls
// - store_rechecks_total: connectivity probes by outcome
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
	StoreCalls   *prometheus.CounterVec
	StoreLatency *prometheus.HistogramVec
	UsingPrimary prometheus.Gauge
	Rechecks     *prometheus.CounterVec
}

var _ gateway.Observer = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "HTTP requests by route, method and status."},
			[]string{"path", "method", "status"},
		),
		HTTPLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request latency in seconds.", Buckets: prometheus.DefBuckets},
			[]string{"path", "method"},
		),
		StoreCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "store_calls_total", Help: "Storage gateway calls by backend, operation, kind and outcome."},
			[]string{"backend", "op", "kind", "outcome"},
		),
		StoreLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "store_call_duration_seconds", Help: "Storage gateway call latency in seconds.", Buckets: prometheus.DefBuckets},
			[]string{"backend", "op"},
		),
		UsingPrimary: prometheus.NewGauge(
			prometheus.GaugeOpts{Name: "store_using_primary", Help: "1 while the primary store serves calls, 0 on the fallback."},
		),
		Rechecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "store_rechecks_total", Help: "Primary store connectivity probes by resulting backend."},
			[]string{"backend"},
		),
	}
	m.registry.MustRegister(
		m.HTTPRequests, m.HTTPLatency, m.StoreCalls, m.StoreLatency, m.UsingPrimary, m.Rechecks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the metrics in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveState(state gateway.ConnectionState) {
	if state.UsingPrimary {
		m.UsingPrimary.Set(1)
	} else {
		m.UsingPrimary.Set(0)
	}
	m.Rechecks.WithLabelValues(state.Backend).Inc()
}

func (m *Metrics) ObserveCall(backend, op string, kind school.Kind, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StoreCalls.WithLabelValues(backend, op, kind.String(), outcome).Inc()
	m.StoreLatency.WithLabelValues(backend, op).Observe(elapsed.Seconds())
}

const unmatchedPath = "unmatched"

// Middleware records the HTTP metrics of every request.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			path := c.Path()
			if path == "" { // no route matched: never label with the raw URL
				path = unmatchedPath
			}
			m.HTTPLatency.WithLabelValues(path, c.Request().Method).Observe(time.Since(start).Seconds())
			m.HTTPRequests.WithLabelValues(path, c.Request().Method, strconv.Itoa(status)).Inc()
			return nil
		}
	}
}
