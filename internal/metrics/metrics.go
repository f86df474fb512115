package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// classificationsTotal counts classified queries by condition and the rule that fired.
	classificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aidline",
		Subsystem: "classifier",
		Name:      "classifications_total",
		Help:      "Classified queries by condition and rule",
	}, []string{"condition", "rule"})

	backendLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aidline",
		Subsystem: "retrieval",
		Name:      "backend_latency_seconds",
		Help:      "Latency of a single backend call",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"backend"})

	backendErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aidline",
		Subsystem: "retrieval",
		Name:      "backend_errors_total",
		Help:      "Backend calls that failed or timed out",
	}, []string{"backend"})

	backendResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aidline",
		Subsystem: "retrieval",
		Name:      "backend_results_total",
		Help:      "Raw passages returned per backend",
	}, []string{"backend"})

	// ladderTierTotal counts which relaxation tier produced the accepted set.
	// tier is "1".."4" or "none".
	ladderTierTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aidline",
		Subsystem: "relevance",
		Name:      "ladder_tier_total",
		Help:      "Relaxation tier that accepted passages, per backend",
	}, []string{"backend", "tier"})

	guideSourceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aidline",
		Subsystem: "guide",
		Name:      "guides_total",
		Help:      "Guides produced by source (curated, synthesized, fallback)",
	}, []string{"source"})

	buildLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "aidline",
		Subsystem: "evidence",
		Name:      "build_latency_seconds",
		Help:      "End-to-end evidence context build latency",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aidline",
		Subsystem: "evidence",
		Name:      "cache_lookups_total",
		Help:      "Evidence cache lookups by result (hit, miss, error)",
	}, []string{"result"})
)

func RecordClassification(condition, rule string) {
	if rule == "" {
		rule = "none"
	}
	classificationsTotal.WithLabelValues(condition, rule).Inc()
}

// RecordBackendCall records latency, result count and failure of one backend call.
func RecordBackendCall(backend string, d time.Duration, results int, err error) {
	backendLatencySeconds.WithLabelValues(backend).Observe(d.Seconds())
	if err != nil {
		backendErrorsTotal.WithLabelValues(backend).Inc()
		return
	}
	backendResultsTotal.WithLabelValues(backend).Add(float64(results))
}

func RecordLadderTier(backend, tier string) {
	ladderTierTotal.WithLabelValues(backend, tier).Inc()
}

func RecordGuide(source string) {
	guideSourceTotal.WithLabelValues(source).Inc()
}

func ObserveBuild(d time.Duration) {
	buildLatencySeconds.Observe(d.Seconds())
}

func RecordCacheLookup(result string) {
	cacheLookupsTotal.WithLabelValues(result).Inc()
}
