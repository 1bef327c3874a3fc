package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesikahq/spitalverse/internal/store"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spitalverse_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spitalverse_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "spitalverse_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Assistant metrics
	assistantOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spitalverse_assistant_outcomes_total",
			Help: "Assistant results by kind, gateway status and source",
		},
		[]string{"kind", "status", "source"},
	)

	fallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spitalverse_fallbacks_total",
			Help: "Number of times the local rule engine replaced the language model",
		},
		[]string{"kind"},
	)

	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "spitalverse_llm_request_duration_seconds",
			Help:    "Language model request duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"kind", "outcome"},
	)

	// Store metrics
	storeMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spitalverse_store_mutations_total",
			Help: "Persisted store mutations by collection and operation",
		},
		[]string{"collection", "op"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordAssistantOutcome counts one assistant result.
func RecordAssistantOutcome(kind, status, source string) {
	assistantOutcomes.WithLabelValues(kind, status, source).Inc()
	if source == "fallback" {
		fallbacksTotal.WithLabelValues(kind).Inc()
	}
}

// RecordLLMRequest records a language model round trip.
func RecordLLMRequest(kind, outcome string, duration time.Duration) {
	llmRequestDuration.WithLabelValues(kind, outcome).Observe(duration.Seconds())
}

// StoreObserver counts mutations reported by the store.
func StoreObserver() store.Observer {
	return store.ObserverFunc(func(_ context.Context, m store.Mutation) {
		storeMutations.WithLabelValues(m.Collection, string(m.Op)).Inc()
	})
}
