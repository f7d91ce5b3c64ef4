package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riskibarqy/pickup-games/internal/domain/game"
)

const metricsNamespace = "pickup"

// Metrics owns a private Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	transitions      *prometheus.CounterVec
	rosterOutcomes   *prometheus.CounterVec
	versionConflicts *prometheus.CounterVec
	autoStartRuns    *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInFlight prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "game_transitions_total",
			Help:      "Game status transitions by source and target status.",
		}, []string{"from", "to"}),
		rosterOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "game_operation_outcomes_total",
			Help:      "Game mutation outcomes by operation and outcome kind.",
		}, []string{"operation", "outcome"}),
		versionConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "game_version_conflicts_total",
			Help:      "Optimistic version conflicts retried by operation.",
		}, []string{"operation"}),
		autoStartRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "auto_start_games_total",
			Help:      "Games handled by the auto-start sweeper by result.",
		}, []string{"result"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests received.",
		}, []string{"method", "route", "status"}),
		httpLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		httpInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}
}

func (m *Metrics) ObserveTransition(from, to game.Status) {
	fromLabel := string(from)
	if fromLabel == "" {
		fromLabel = "none"
	}
	m.transitions.WithLabelValues(fromLabel, string(to)).Inc()
}

func (m *Metrics) ObserveRosterOutcome(operation, outcome string) {
	m.rosterOutcomes.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveVersionConflict(operation string) {
	m.versionConflicts.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveAutoStart(started, skipped, failed int) {
	m.autoStartRuns.WithLabelValues("started").Add(float64(started))
	m.autoStartRuns.WithLabelValues("skipped").Add(float64(skipped))
	m.autoStartRuns.WithLabelValues("failed").Add(float64(failed))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request metrics. It must wrap the ServeMux directly: the route label
// is read from the request pattern the mux sets while routing.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(rec.status)
		m.httpRequests.WithLabelValues(r.Method, route, status).Inc()
		m.httpLatency.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
