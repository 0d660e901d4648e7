package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "code"},
	)

	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "code"},
	)

	requestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	uploadSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upload_size_bytes",
			Help:    "Size of multipart photo uploads in bytes",
			Buckets: prometheus.ExponentialBuckets(10_000, 4, 6),
		},
		[]string{"path"},
	)

	clientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "registro_client_request_duration_seconds",
			Help:    "Duration of requests from the registro client to the recognition backend",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation", "code"},
	)

	clientRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registro_client_requests_total",
			Help: "Requests from the registro client to the recognition backend; code is \"error\" for transport failures",
		},
		[]string{"operation", "code"},
	)
)

// shouldCollectMetrics keeps probe and scrape traffic out of the request metrics
func shouldCollectMetrics(path string) bool {
	for _, skip := range []string{"/health", "/ready", "/metrics"} {
		if strings.HasPrefix(path, skip) {
			return false
		}
	}
	return true
}

// PrometheusMiddleware records request metrics for the stub backend. The path label
// uses the route template (/profiles/:id) to keep cardinality bounded.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !shouldCollectMetrics(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		requestsInFlight.WithLabelValues(method, path).Inc()
		defer requestsInFlight.WithLabelValues(method, path).Dec()

		if strings.HasPrefix(c.ContentType(), "multipart/") && c.Request.ContentLength > 0 {
			uploadSize.WithLabelValues(path).Observe(float64(c.Request.ContentLength))
		}

		c.Next()

		code := strconv.Itoa(c.Writer.Status())
		requestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(method, path, code).Inc()
	}
}

// ObserveClientRequest records one client call to the backend. status is the HTTP
// status, or 0 when the request never got a response.
func ObserveClientRequest(operation string, status int, d time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	clientRequestDuration.WithLabelValues(operation, code).Observe(d.Seconds())
	clientRequestTotal.WithLabelValues(operation, code).Inc()
}
