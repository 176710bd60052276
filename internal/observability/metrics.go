package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	badgesAwardedTotal  *prometheus.CounterVec
	badgeFailuresTotal  *prometheus.CounterVec
	warningsIssuedTotal *prometheus.CounterVec
	appealsTotal        *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the trust engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trust_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		badgesAwardedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_badges_awarded_total",
			Help: "Badges awarded, by badge id.",
		}, []string{"badge"})

		badgeFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_badge_evaluation_failures_total",
			Help: "Badge evaluation failures swallowed by the rule engine, by stage.",
		}, []string{"stage"})

		warningsIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_warnings_issued_total",
			Help: "Warnings issued, by escalation level.",
		}, []string{"level"})

		appealsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_appeals_total",
			Help: "Ban appeals created and resolved, by status.",
		}, []string{"status"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trust_notifications_total",
			Help: "Notifications dispatched, by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			badgesAwardedTotal,
			badgeFailuresTotal,
			warningsIssuedTotal,
			appealsTotal,
			notificationsTotal,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// BadgesAwarded exposes the badge award counter.
func BadgesAwarded() *prometheus.CounterVec {
	RegisterMetrics()
	return badgesAwardedTotal
}

// BadgeFailures exposes the swallowed badge failure counter.
func BadgeFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return badgeFailuresTotal
}

// WarningsIssued exposes the warning counter.
func WarningsIssued() *prometheus.CounterVec {
	RegisterMetrics()
	return warningsIssuedTotal
}

// Appeals exposes the appeal counter.
func Appeals() *prometheus.CounterVec {
	RegisterMetrics()
	return appealsTotal
}

// Notifications exposes the notification outcome counter.
func Notifications() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}
