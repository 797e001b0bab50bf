// Package metrics provides Prometheus metrics for the LOE engine.
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Engine metrics cover Orange Book loads, approval registry calls and
// profile builds. All metrics are registered with the Prometheus default
// registry during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of client rate limiter buckets",
		},
	)

	OrangeBookLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orangebook_loads_total",
			Help: "Orange Book table loads by source (memory, disk, network)",
		},
		[]string{"source"},
	)

	OrangeBookLoadFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orangebook_load_failures_total",
			Help: "Failed Orange Book archive downloads",
		},
	)

	OrangeBookLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orangebook_download_duration_seconds",
			Help:    "Time to download, extract and parse the Orange Book archive",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	OrangeBookRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orangebook_rows",
			Help: "Rows in the current Orange Book generation by dataset",
		},
		[]string{"dataset"},
	)

	RegistryRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_registry_requests_total",
			Help: "Approval registry searches by field and outcome",
		},
		[]string{"field", "outcome"},
	)

	ProfilesBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loe_profiles_total",
			Help: "Profile builds by result (found, not_found, error)",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(OrangeBookLoads)
	prometheus.MustRegister(OrangeBookLoadFailures)
	prometheus.MustRegister(OrangeBookLoadDuration)
	prometheus.MustRegister(OrangeBookRows)
	prometheus.MustRegister(RegistryRequests)
	prometheus.MustRegister(ProfilesBuilt)
}
