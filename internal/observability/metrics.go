// Package observability holds the Prometheus collectors shared by the
// HTTP layer and the relational store.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by route template, method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedbackboard_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"route", "method", "status"})

	// HTTPRequestDuration records request latency by route template and method.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feedbackboard_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// DatabaseQueryLatency records store latency by operation.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feedbackboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// FlashStoreErrors counts failures to load or save flash messages by backend.
	FlashStoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedbackboard_flash_store_errors_total",
		Help: "Total number of flash store errors",
	}, []string{"backend", "operation"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
