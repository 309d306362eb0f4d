package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks latency of outbound gateway requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ads_admin_request_duration_seconds",
			Help: "Duration of outbound API gateway requests in seconds",
			Buckets: []float64{
				0.01, // 10ms
				0.05, // 50ms
				0.1,  // 100ms
				0.25, // 250ms
				0.5,  // 500ms
				1.0,  // 1s
				2.5,  // 2.5s
				5.0,  // 5s
				15.0, // 15s, the client timeout
			},
		},
		[]string{"method", "outcome"}, // outcome: ok, network, auth, not_found, server
	)

	// RequestRetries counts retried attempts after transient network failures.
	RequestRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ads_admin_request_retries_total",
			Help: "Number of outbound request retries after transient network failures",
		},
	)

	// AuthFailures counts session teardowns triggered by 401 responses.
	AuthFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ads_admin_auth_failures_total",
			Help: "Number of authentication failures that tore down the session",
		},
	)

	// CacheReads counts cache reads per logical key.
	CacheReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ads_admin_cache_reads_total",
			Help: "Cache reads per logical resource key",
		},
		[]string{"key", "result"}, // result: hit, stale_hit, miss
	)
)

// RecordRequest records a completed outbound request.
func RecordRequest(method, outcome string, seconds float64) {
	RequestDuration.WithLabelValues(method, outcome).Observe(seconds)
}

// RecordCacheRead records a cache read result for a key.
func RecordCacheRead(key, result string) {
	CacheReads.WithLabelValues(key, result).Inc()
}
