package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	requestsTotal         *prometheus.CounterVec
	requestLatencySeconds *prometheus.HistogramVec
	requestErrorsTotal    *prometheus.CounterVec
	submissionsTotal      *prometheus.CounterVec
	submissionsFlagged    prometheus.Counter
	validationsTotal      *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillport_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skillport_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		requestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillport_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillport_submissions_total",
			Help: "Submissions ingested, labelled by platform and verdict.",
		}, []string{"platform", "verdict"})

		submissionsFlagged = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "skillport_submissions_flagged_total",
			Help: "Submissions auto-flagged as suspiciously fast.",
		})

		validationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "skillport_assignment_validations_total",
			Help: "Validation passes, labelled by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			requestsTotal,
			requestLatencySeconds,
			requestErrorsTotal,
			submissionsTotal,
			submissionsFlagged,
			validationsTotal,
		)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the latency histogram for API requests.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// RequestErrors exposes the counter for API error responses.
func RequestErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return requestErrorsTotal
}

// Submissions exposes the counter for ingested submissions.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// SubmissionsFlagged exposes the counter for auto-flagged submissions.
func SubmissionsFlagged() prometheus.Counter {
	RegisterMetrics()
	return submissionsFlagged
}

// Validations exposes the counter for validation outcomes.
func Validations() *prometheus.CounterVec {
	RegisterMetrics()
	return validationsTotal
}
