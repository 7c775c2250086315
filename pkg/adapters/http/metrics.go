package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "diastole"

// Metrics holds the Prometheus collectors of the HTTP adapter.
type Metrics struct {
	// RequestsTotal counts requests by route pattern, method and status code.
	RequestsTotal *prometheus.CounterVec
	// RequestDuration measures handler latency by route pattern.
	RequestDuration *prometheus.HistogramVec
	// ResultsTotal counts results reached, by algorithm and result key.
	ResultsTotal *prometheus.CounterVec
	// InvalidAnswersTotal counts rejected answers by algorithm.
	InvalidAnswersTotal *prometheus.CounterVec
	// ErrorsTotal counts failed engine operations by error kind.
	ErrorsTotal *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		ResultsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "results_total",
			Help:      "Results reached by algorithm and result key.",
		}, []string{"algorithm", "result"}),
		InvalidAnswersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "invalid_answers_total",
			Help:      "Answers rejected because no successor matched.",
		}, []string{"algorithm"}),
		ErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "errors_total",
			Help:      "Failed engine operations by error kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		m.RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(code)).Inc()
		m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
