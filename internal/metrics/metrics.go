// Package metrics defines the Prometheus collectors for the prompt pipeline.
// HTTP-level instrumentation lives in the middleware package; the collectors
// here track domain outcomes so dashboards can tell a healthy provider from
// a silently degraded one that keeps answering with fallback text.
//
// Label cardinality is bounded: tool ids come from the fixed catalog and all
// other labels are small enumerations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for PromptsTotal.
const (
	OutcomeCompleted = "completed"
	OutcomeFallback  = "fallback"
	OutcomeDenied    = "denied"
	OutcomeReplayed  = "replayed"
)

// Result labels for ProviderCalls.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultEmpty   = "empty"
	ResultSkipped = "skipped"
)

var (
	// PromptsTotal counts pipeline submissions by tool and outcome.
	PromptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptforge_prompts_total",
			Help: "Prompt submissions by tool and outcome.",
		},
		[]string{"tool", "outcome"},
	)

	// ProviderCalls counts provider invocations by result. "skipped" means
	// no credential was configured and no request left the process.
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "promptforge_provider_calls_total",
			Help: "Completion provider invocations by result.",
		},
		[]string{"result"},
	)

	// ProviderLatency records the round trip of attempted provider calls.
	ProviderLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "promptforge_provider_latency_seconds",
			Help:    "Latency of completion provider calls in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 90},
		},
	)

	// PersistFailures counts prompt records that could not be saved.
	PersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promptforge_persist_failures_total",
			Help: "Prompt request records that failed to persist.",
		},
	)

	// QuotaErrors counts quota backend errors that were failed open.
	QuotaErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promptforge_quota_errors_total",
			Help: "Quota backend errors (requests were allowed).",
		},
	)

	// EventPublishFailures counts completion events that could not be published.
	EventPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promptforge_event_publish_failures_total",
			Help: "Prompt completion events that failed to publish.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		PromptsTotal,
		ProviderCalls,
		ProviderLatency,
		PersistFailures,
		QuotaErrors,
		EventPublishFailures,
	)
}
