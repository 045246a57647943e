// Package observability exposes Prometheus metrics for the ledger service.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects application metrics on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	intentsTotal    *prometheus.CounterVec
	alertsRaised    prometheus.Counter
}

// NewMetrics initialises the registry and base metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventra_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventra_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	intents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventra_intents_total",
		Help: "Ledger intents by kind and outcome.",
	}, []string{"kind", "outcome"})
	alerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventra_alerts_raised_total",
		Help: "Low-stock alerts raised by the engine.",
	})
	registry.MustRegister(requests, duration, intents, alerts)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		intentsTotal:    intents,
		alertsRaised:    alerts,
	}
}

// IntentApplied implements ledger.Recorder.
func (m *Metrics) IntentApplied(kind string) {
	if m == nil {
		return
	}
	m.intentsTotal.WithLabelValues(kind, "applied").Inc()
}

// IntentRejected implements ledger.Recorder.
func (m *Metrics) IntentRejected(kind string) {
	if m == nil {
		return
	}
	m.intentsTotal.WithLabelValues(kind, "rejected").Inc()
}

// AlertRaised implements ledger.Recorder.
func (m *Metrics) AlertRaised() {
	if m == nil {
		return
	}
	m.alertsRaised.Inc()
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request counters and durations per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
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
