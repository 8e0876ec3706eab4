// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GeminiRequests counts outbound model calls by operation and outcome.
	GeminiRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandai_gemini_requests_total",
			Help: "Total number of Gemini generate-content calls",
		},
		[]string{"operation", "outcome"},
	)

	// GeminiDuration observes the latency of successful and failed model calls.
	GeminiDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "brandai_gemini_request_duration_seconds",
			Help:    "Duration of Gemini generate-content calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"operation", "model"},
	)

	// BrandCacheLookups counts brand DNA cache lookups by result (hit, miss, corrupt).
	BrandCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandai_brand_cache_lookups_total",
			Help: "Brand DNA cache lookups by result",
		},
		[]string{"result"},
	)

	// WorkflowTransitions counts request outcomes in the two-step flow.
	WorkflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandai_workflow_transitions_total",
			Help: "Workflow request outcomes by operation and resulting status",
		},
		[]string{"operation", "status"},
	)

	// Verdicts counts completed critiques by verdict. Unknown verdicts share the "other" label.
	Verdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brandai_critique_verdicts_total",
			Help: "Completed critiques by verdict",
		},
		[]string{"verdict"},
	)
)

// Handler exposes the default registry for gin.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
