// Package metrics exposes prometheus collectors for fiscal events and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ticketsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiscal_tickets_recorded_total",
		Help: "Total tickets committed to the ledger.",
	})

	ticketsCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiscal_tickets_cancelled_total",
		Help: "Total tickets cancelled.",
	})

	closuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiscal_closures_total",
		Help: "Total daily closures sealed.",
	})

	chainVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiscal_chain_verifications_total",
		Help: "Total chain verification runs by result.",
	}, []string{"result"})

	chainBreaksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiscal_chain_breaks_total",
		Help: "Total broken links found by reason.",
	}, []string{"reason"})

	auditWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiscal_audit_write_failures_total",
		Help: "Total audit entries that could not be persisted.",
	})

	placeholderSignaturesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fiscal_placeholder_signatures_total",
		Help: "Total tickets and closures signed without a certified key.",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fiscal_http_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fiscal_http_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// Handler returns a Gin handler that serves Prometheus metrics.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func RecordTicket() {
	ticketsRecordedTotal.Inc()
}

func RecordCancellation() {
	ticketsCancelledTotal.Inc()
}

func RecordClosure() {
	closuresTotal.Inc()
}

// RecordVerification records one verification run and each break it found.
func RecordVerification(valid bool, breakReasons []string) {
	if valid {
		chainVerificationsTotal.WithLabelValues("valid").Inc()
	} else {
		chainVerificationsTotal.WithLabelValues("broken").Inc()
	}
	for _, r := range breakReasons {
		chainBreaksTotal.WithLabelValues(r).Inc()
	}
}

func RecordAuditWriteFailure() {
	auditWriteFailuresTotal.Inc()
}

func RecordPlaceholderSignature() {
	placeholderSignaturesTotal.Inc()
}
