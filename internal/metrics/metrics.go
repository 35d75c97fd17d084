// Package metrics exposes the Prometheus collectors of the marketplace core.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketplace"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	provisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "provisions_total",
			Help:      "Account provisioning calls by whether a record was created.",
		},
		[]string{"created"},
	)

	degradedSessions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accounts",
			Name:      "degraded_sessions_total",
			Help:      "Sessions started without an account because the store was unavailable.",
		},
	)

	creditMovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "credits_total",
			Help:      "Credits moved by entry kind.",
		},
		[]string{"kind"},
	)

	reserveRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "reserve_rejections_total",
			Help:      "Reservations rejected for insufficient credits.",
		},
	)

	jobsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "submitted_total",
			Help:      "Jobs accepted per app.",
		},
		[]string{"app"},
	)

	jobTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "transitions_total",
			Help:      "Job state transitions by target status.",
		},
		[]string{"status"},
	)

	jobsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "expired_total",
			Help:      "Stale jobs forced into failed by the reaper.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		provisions,
		degradedSessions,
		creditMovements,
		reserveRejections,
		jobsSubmitted,
		jobTransitions,
		jobsExpired,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request counts and latency keyed by the chi route
// pattern, so ids in paths do not explode label cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordProvision counts a provisioning call.
func RecordProvision(created bool) {
	provisions.WithLabelValues(strconv.FormatBool(created)).Inc()
}

// RecordDegradedSession counts a session served without an account.
func RecordDegradedSession() {
	degradedSessions.Inc()
}

// RecordCredits adds amount credits moved for kind.
func RecordCredits(kind string, amount int64) {
	if amount < 0 {
		amount = -amount
	}
	creditMovements.WithLabelValues(kind).Add(float64(amount))
}

// RecordReserveRejected counts a reservation refused for insufficient credits.
func RecordReserveRejected() {
	reserveRejections.Inc()
}

// RecordJobSubmitted counts an accepted job.
func RecordJobSubmitted(appID string) {
	jobsSubmitted.WithLabelValues(appID).Inc()
}

// RecordJobTransition counts a job reaching status.
func RecordJobTransition(status string) {
	jobTransitions.WithLabelValues(status).Inc()
}

// RecordJobsExpired counts jobs failed by the reaper.
func RecordJobsExpired(n int) {
	jobsExpired.Add(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
