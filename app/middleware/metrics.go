// Package middleware contains HTTP middleware for the API server
package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Response cache outcomes partitioned by category
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_lookups_total",
			Help: "Response cache lookups by category and outcome",
		},
		[]string{"category", "outcome"},
	)

	// Buzz recomputation runs and scored entity counts
	buzzComputeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buzz_compute_runs_total",
			Help: "Buzz score recomputations by region",
		},
		[]string{"region"},
	)

	buzzScoredEntities = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "buzz_scored_entities",
			Help:    "Entities scored per buzz recomputation",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
	)
)

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		// Call the next handler in the chain
		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path // Use route template to avoid high cardinality
		}

		labels := prometheus.Labels{
			"method": method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordCacheLookup counts one response cache lookup outcome
func RecordCacheLookup(category string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	cacheLookupsTotal.With(prometheus.Labels{"category": category, "outcome": outcome}).Inc()
}

// RecordBuzzCompute counts one buzz recomputation for a region
func RecordBuzzCompute(region string, scored int) {
	buzzComputeTotal.With(prometheus.Labels{"region": region}).Inc()
	buzzScoredEntities.Observe(float64(scored))
}
