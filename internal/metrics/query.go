package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	TransformRulesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signdex",
			Name:      "transform_rules_total",
			Help:      "Transformation rules that produced a surviving candidate",
		},
		[]string{"rule"},
	)

	TransformModelDegradedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "signdex",
			Name:      "transform_model_degraded_total",
			Help:      "Transformations that fell back to rule-based only after a model failure or timeout",
		},
	)

	RetrievalCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signdex",
			Name:      "retrieval_candidates_total",
			Help:      "Per-candidate retrieval outcomes",
		},
		[]string{"status"}, // "success" / "error"
	)

	TranslateOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signdex",
			Name:      "translate_outcomes_total",
			Help:      "Sentence translation outcomes by kind",
		},
		[]string{"kind"}, // "phrase" / "word_sequence" / "no_equivalent"
	)
)

var queryMetricsRegistered bool

// RegisterQueryMetrics registers Prometheus query pipeline metrics. Must be called once from main.
func RegisterQueryMetrics() {
	if queryMetricsRegistered {
		return
	}
	prometheus.MustRegister(TransformRulesTotal)
	prometheus.MustRegister(TransformModelDegradedTotal)
	prometheus.MustRegister(RetrievalCandidatesTotal)
	prometheus.MustRegister(TranslateOutcomesTotal)
	queryMetricsRegistered = true
}
