package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so that several instances (one per test
// server) never collide. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	ingests           prometheus.Counter
	mirrorErrors      prometheus.Counter
	predictions       *prometheus.CounterVec
	healthIndex       *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		ingests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tankwatch_ingests_total",
			Help: "Total reading sets accepted on POST /data.",
		}),
		mirrorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tankwatch_mirror_errors_total",
			Help: "Total failed writes to the InfluxDB reading mirror.",
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tankwatch_predictions_total",
			Help: "Total prediction requests by outcome (ok, no_data).",
		}, []string{"outcome"}),
		healthIndex: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tankwatch_tank_health_index",
			Help: "Health index of the latest reading, per tank.",
		}, []string{"tank"}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.ingests,
		m.mirrorErrors,
		m.predictions,
		m.healthIndex,
	)
	return m
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Middleware records request count and latency, labelled with the matched
// route template. Install it with (*mux.Router).Use and around the router's
// NotFoundHandler and MethodNotAllowedHandler, which Use does not reach.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m == nil {
			return
		}
		route := "unmatched"
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IngestRecorded() {
	if m == nil {
		return
	}
	m.ingests.Inc()
}

func (m *Metrics) MirrorFailed() {
	if m == nil {
		return
	}
	m.mirrorErrors.Inc()
}

func (m *Metrics) PredictionServed(outcome string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetTankHealth(tank string, index float64) {
	if m == nil {
		return
	}
	m.healthIndex.WithLabelValues(tank).Set(index)
}
