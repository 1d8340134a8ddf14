package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	reviewRequestsTotal  *prometheus.CounterVec
	reviewLatencySeconds *prometheus.HistogramVec
	reviewErrorsTotal    *prometheus.CounterVec

	reviewTransitionsTotal   *prometheus.CounterVec
	submissionsCreatedTotal  *prometheus.CounterVec
	submissionsRejectedTotal *prometheus.CounterVec
	statisticsCacheTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the review API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		reviewRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_requests_total",
			Help: "Total number of reviewer API requests served.",
		}, []string{"method", "route", "status"})

		reviewLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "review_latency_seconds",
			Help:    "Latency distribution for reviewer API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		reviewErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_errors_total",
			Help: "Total number of error responses returned by reviewer endpoints.",
		}, []string{"method", "route", "status"})

		reviewTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "review_transitions_total",
			Help: "Accepted submission status transitions.",
		}, []string{"from", "to"})

		submissionsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_created_total",
			Help: "Submissions accepted into the review queue.",
		}, []string{"sport"})

		submissionsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submissions_rejected_total",
			Help: "Submission attempts refused before entering the queue.",
		}, []string{"reason"})

		statisticsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "statistics_cache_total",
			Help: "Dashboard statistics cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			reviewRequestsTotal,
			reviewLatencySeconds,
			reviewErrorsTotal,
			reviewTransitionsTotal,
			submissionsCreatedTotal,
			submissionsRejectedTotal,
			statisticsCacheTotal,
		)
	})
}

// ReviewRequests exposes the counter for reviewer requests.
func ReviewRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewRequestsTotal
}

// ReviewLatency exposes the latency histogram for reviewer requests.
func ReviewLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return reviewLatencySeconds
}

// ReviewErrors exposes the counter for reviewer error responses.
func ReviewErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewErrorsTotal
}

// ReviewTransitions counts accepted status changes.
func ReviewTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewTransitionsTotal
}

// SubmissionsCreated counts new submissions per sport.
func SubmissionsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsCreatedTotal
}

// SubmissionsRejected counts refused submissions per reason.
func SubmissionsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsRejectedTotal
}

// StatisticsCache counts statistics cache hits and misses.
func StatisticsCache() *prometheus.CounterVec {
	RegisterMetrics()
	return statisticsCacheTotal
}
