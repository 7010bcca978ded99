package observ

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "apoll_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apoll_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
	PollsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apoll_polls_created_total",
		Help: "Total number of polls created",
	})
	SuggestionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apoll_suggestions_total",
		Help: "Total number of suggestions submitted",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration, PollsCreatedTotal, SuggestionsTotal)
}

// MetricsMiddleware records per-request counters and latency. Uses the
// route template (c.FullPath) rather than the raw URL so every poll page
// collapses into one "/poll/:poll_id" label.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		HTTPRequestsTotal.With(labels).Inc()
		HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}
