// Package metrics instruments every HTTP request and exposes the scrape
// endpoint. Collectors live on the container-provided prometheus registry
// rather than the global default, so tests and child containers can run
// isolated registries side by side.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/provenhq/platform"
)

// ModuleName identifies the module in registry reports.
const ModuleName = "metrics"

const scrapePath = "/metrics"

var (
	_ platform.Module[chi.Router]              = (*Module)(nil)
	_ platform.Initializer[chi.Router]         = (*Module)(nil)
	_ platform.MiddlewareRegistrar[chi.Router] = (*Module)(nil)
)

// Module wires request metrics into the router and serves /metrics.
type Module struct {
	platform.BaseModule[chi.Router]
	container *platform.Container

	registry *prometheus.Registry
	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the metrics module.
func New(container *platform.Container) *Module {
	return &Module{
		BaseModule: platform.NewBaseModule[chi.Router](ModuleName, platform.TokenMetrics),
		container:  container,
	}
}

// Initialize resolves the registry and registers the HTTP collectors plus
// the standard process and Go runtime collectors.
func (m *Module) Initialize(ctx context.Context, _ chi.Router) error {
	registry, err := platform.As[*prometheus.Registry](ctx, m.container, platform.TokenMetrics)
	if err != nil {
		return err
	}
	m.registry = registry

	m.inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "platform",
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})
	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "platform",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "path", "status"})
	m.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "platform",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "path"})

	m.registry.MustRegister(
		m.inFlight,
		m.requests,
		m.duration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return nil
}

// RegisterMiddleware installs the instrumentation wrapper.
func (m *Module) RegisterMiddleware(r chi.Router) error {
	r.Use(m.instrument)
	return nil
}

// RegisterRoutes mounts the scrape endpoint.
func (m *Module) RegisterRoutes(r chi.Router) error {
	r.Handle(scrapePath, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return nil
}

func (m *Module) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == scrapePath {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.inFlight.Inc()
		defer m.inFlight.Dec()

		next.ServeHTTP(rec, r)

		// The route pattern is only populated after routing ran, which
		// keeps label cardinality bounded by the route table.
		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = "unmatched"
		}

		m.requests.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.duration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
