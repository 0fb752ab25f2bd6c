// Package metrics exposes Prometheus instrumentation for the coordination
// service: action throughput by department and HTTP request timings.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ActionsCreated   *prometheus.CounterVec
	ActionsCompleted *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ActionsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_actions_created_total",
			Help: "Clinical actions created, by target department and effective priority.",
		}, []string{"department", "priority"}),
		ActionsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nexus_actions_completed_total",
			Help: "Clinical actions transitioned to Completed, by department.",
		}, []string{"department"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nexus_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// Middleware records request latency for every handled request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.RequestDuration.
			WithLabelValues(r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
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
