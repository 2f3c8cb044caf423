package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_ai_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tally_ai_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	LLMCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_ai_llm_calls_total",
			Help: "Completion calls by provider, mode and outcome",
		},
		[]string{"provider", "mode", "outcome"},
	)

	LLMLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tally_ai_llm_latency_seconds",
			Help:    "Latency of successful completion attempts in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"provider", "mode"},
	)

	LLMRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_ai_llm_retries_total",
			Help: "Failed completion attempts that were retried",
		},
		[]string{"provider", "kind"},
	)

	LLMTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_ai_llm_tokens_total",
			Help: "Tokens consumed, split into prompt and completion",
		},
		[]string{"model", "type"},
	)

	LLMCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_ai_llm_cost_usd_total",
			Help: "Estimated completion spend in USD",
		},
		[]string{"model"},
	)

	PhaseADecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_ai_phase_a_decisions_total",
			Help: "Phase A decisions by response type",
		},
		[]string{"response_type"},
	)

	PhaseBMoods = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_ai_phase_b_moods_total",
			Help: "Final moods chosen for Phase B replies",
		},
		[]string{"mood"},
	)

	Nudges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_ai_nudges_total",
			Help: "Nudges detected in Phase B replies",
		},
		[]string{"type"},
	)
)
