// Package metrics holds the prometheus collectors of the API server and
// the notifier.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ridelog"

// Advisory outcomes.
const (
	AdvisoryOK      = "ok"
	AdvisoryInvalid = "invalid"
	AdvisoryFailed  = "failed"
)

// Metrics owns a registry so tests and separate binaries do not share
// global state.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	advisories      *prometheus.CounterVec
	remindersDue    *prometheus.GaugeVec
	remindersSent   prometheus.Counter
	publishFailures prometheus.Counter
}

// New creates and registers the collectors, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		advisories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trip_advisories_total",
			Help:      "Trip advisory requests by outcome.",
		}, []string{"outcome"}),
		remindersDue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reminders_due",
			Help:      "Due reminders found by the last notifier sweep, by source.",
		}, []string{"source"}),
		remindersSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_notifications_total",
			Help:      "Reminder notifications published.",
		}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_publish_failures_total",
			Help:      "Reminder notifications that could not be published.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.advisories,
		m.remindersDue,
		m.remindersSent,
		m.publishFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument counts and times requests to next under the route label.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// AdvisoryServed records the outcome of a trip advisory request. The
// recording methods are no-ops on a nil *Metrics.
func (m *Metrics) AdvisoryServed(outcome string) {
	if m == nil {
		return
	}
	m.advisories.WithLabelValues(outcome).Inc()
}

// RemindersDue sets the number of due reminders of a sweep for a source.
func (m *Metrics) RemindersDue(source string, n int) {
	if m == nil {
		return
	}
	m.remindersDue.WithLabelValues(source).Set(float64(n))
}

// ReminderPublished records a notification result.
func (m *Metrics) ReminderPublished(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.publishFailures.Inc()
		return
	}
	m.remindersSent.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
