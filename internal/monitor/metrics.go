package monitor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the fraud core's Prometheus metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	evaluations    *prometheus.CounterVec
	ruleFlags      *prometheus.CounterVec
	alertsCreated  prometheus.Counter
	alertsResolved *prometheus.CounterVec
	openAlerts     prometheus.Gauge
	httpDuration   *prometheus.HistogramVec
}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	return &Metrics{
		registry: registry,
		evaluations: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_evaluations_total",
			Help: "Total transactions analyzed, by verdict.",
		}, []string{"flagged"}),
		ruleFlags: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_rule_flags_total",
			Help: "Rule matches during evaluation, by rule name.",
		}, []string{"rule"}),
		alertsCreated: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "fraud_alerts_created_total",
			Help: "Alerts appended to the alert log.",
		}),
		alertsResolved: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_alerts_resolved_total",
			Help: "Alerts resolved, by resolution.",
		}, []string{"resolution"}),
		openAlerts: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
			Name: "fraud_alerts_open",
			Help: "Alerts currently awaiting resolution.",
		}),
		httpDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fraud_http_request_duration_seconds",
			Help:    "HTTP request latency by method and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

// Evaluated records one analyze call.
func (m *Metrics) Evaluated(flagged bool) {
	label := "false"
	if flagged {
		label = "true"
	}
	m.evaluations.WithLabelValues(label).Inc()
}

// RuleFlagged records a single rule match.
func (m *Metrics) RuleFlagged(rule string) {
	m.ruleFlags.WithLabelValues(rule).Inc()
}

// AlertCreated records a new alert and bumps the open gauge.
func (m *Metrics) AlertCreated() {
	m.alertsCreated.Inc()
	m.openAlerts.Inc()
}

// AlertResolved records a resolution and drops the open gauge.
func (m *Metrics) AlertResolved(resolution string) {
	m.alertsResolved.WithLabelValues(resolution).Inc()
	m.openAlerts.Dec()
}

// SetOpenAlerts primes the open-alert gauge from store state at boot.
func (m *Metrics) SetOpenAlerts(n int) {
	m.openAlerts.Set(float64(n))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, status string, elapsed time.Duration) {
	m.httpDuration.WithLabelValues(method, status).Observe(elapsed.Seconds())
}

// Handler serves the registry in Prometheus text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
