// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rentdesk"

// Metrics is safe to use through a nil pointer; every method becomes a no-op.
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	ReportsRendered   *prometheus.CounterVec
	ReportCacheHits   prometheus.Counter
	ReportCacheMisses prometheus.Counter
	PaymentsRecorded  *prometheus.CounterVec
	RemindersSent     *prometheus.CounterVec
	ExportsTotal      *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests
// to avoid duplicate registration on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		ReportsRendered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "rendered_total",
			Help:      "Payment report documents rendered by format.",
		}, []string{"format"}),
		ReportCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "cache_hits_total",
			Help:      "Report document cache hits.",
		}),
		ReportCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "cache_misses_total",
			Help:      "Report document cache misses.",
		}),
		PaymentsRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payments",
			Name:      "recorded_total",
			Help:      "Payments recorded by status.",
		}, []string{"status"}), // completed, pending, failed
		RemindersSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "sent_total",
			Help:      "Notifications created by the reminder run, by type.",
		}, []string{"type"}),
		ExportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sheets",
			Name:      "exports_total",
			Help:      "Google Sheets exports by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
}

func (m *Metrics) ObserveHTTP(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) ReportRendered(format string) {
	if m == nil {
		return
	}
	m.ReportsRendered.WithLabelValues(format).Inc()
}

func (m *Metrics) ReportCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.ReportCacheHits.Inc()
		return
	}
	m.ReportCacheMisses.Inc()
}

func (m *Metrics) PaymentRecorded(status string) {
	if m == nil {
		return
	}
	m.PaymentsRecorded.WithLabelValues(status).Inc()
}

func (m *Metrics) ReminderSent(typ string) {
	if m == nil {
		return
	}
	m.RemindersSent.WithLabelValues(typ).Inc()
}

func (m *Metrics) Export(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ExportsTotal.WithLabelValues(kind, outcome).Inc()
}
