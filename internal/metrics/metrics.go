package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/stroopgame/internal/middleware"
)

// GameRecorder receives gameplay counters from the turn engine
type GameRecorder interface {
	SessionStarted()
	AnswerRecorded(correct bool)
	GameFinished()
}

// SubscriberRecorder tracks live event stream connections
type SubscriberRecorder interface {
	SubscriberConnected(transport string)
	SubscriberDisconnected(transport string)
}

// Metrics holds the Prometheus collectors for one server instance. Each
// instance owns its registry so several apps can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	sessionsStarted  prometheus.Counter
	answersTotal     *prometheus.CounterVec
	gamesFinished    prometheus.Counter
	eventSubscribers *prometheus.GaugeVec
}

var (
	_ GameRecorder       = (*Metrics)(nil)
	_ SubscriberRecorder = (*Metrics)(nil)
)

// New creates the collectors on a fresh registry, along with the Go runtime
// and process collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "endpoint"},
		),
		httpRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		sessionsStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stroop_sessions_started_total",
				Help: "Total number of game sessions started",
			},
		),
		answersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stroop_answers_total",
				Help: "Total number of answers submitted",
			},
			[]string{"correct"},
		),
		gamesFinished: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stroop_games_finished_total",
				Help: "Total number of game sessions played to completion",
			},
		),
		eventSubscribers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stroop_event_subscribers",
				Help: "Number of connected room event subscribers",
			},
			[]string{"transport"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request counts and latency per route template, so room
// codes do not explode label cardinality
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.httpRequestsInFlight.Inc()
		defer m.httpRequestsInFlight.Dec()

		wrapped := middleware.NewResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		endpoint := "unknown"
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		status := strconv.Itoa(wrapped.Status())
		m.httpRequestsTotal.WithLabelValues(r.Method, endpoint, status).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) SessionStarted() {
	m.sessionsStarted.Inc()
}

func (m *Metrics) AnswerRecorded(correct bool) {
	m.answersTotal.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

func (m *Metrics) GameFinished() {
	m.gamesFinished.Inc()
}

func (m *Metrics) SubscriberConnected(transport string) {
	m.eventSubscribers.WithLabelValues(transport).Inc()
}

func (m *Metrics) SubscriberDisconnected(transport string) {
	m.eventSubscribers.WithLabelValues(transport).Dec()
}

// Nop discards everything
type Nop struct{}

var (
	_ GameRecorder       = Nop{}
	_ SubscriberRecorder = Nop{}
)

func (Nop) SessionStarted()               {}
func (Nop) AnswerRecorded(bool)           {}
func (Nop) GameFinished()                 {}
func (Nop) SubscriberConnected(string)    {}
func (Nop) SubscriberDisconnected(string) {}
