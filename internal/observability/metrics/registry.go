// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, route, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds.
	// Deep analysis requests wait on several upstream calls, so buckets reach 30s.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks the current number of HTTP requests being processed
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 6),
		},
		[]string{"method", "path"},
	)
)

// Analysis metrics track the credibility pipeline
var (
	// AnalysisRunsTotal counts pipeline runs by outcome (ok, degraded, absurd, no_relevant, failed)
	AnalysisRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_runs_total",
			Help: "Total number of deep analysis runs by outcome",
		},
		[]string{"outcome"},
	)

	// AnalysisDuration measures end-to-end pipeline latency
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Time taken by one deep analysis run",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	// VerificationScore records the distribution of produced scores
	VerificationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analysis_verification_score",
			Help:    "Distribution of verification scores (0-100)",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	// ArticlesDroppedTotal counts candidate articles removed before scoring
	ArticlesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_articles_dropped_total",
			Help: "Candidate articles dropped by reason (advertisement, irrelevant, invalid)",
		},
		[]string{"reason"},
	)

	// LLMFallbacksTotal counts stages that fell back to deterministic behavior
	LLMFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_llm_fallbacks_total",
			Help: "LLM-backed stages that used their fallback path",
		},
		[]string{"stage"},
	)
)

// Agent and collaborator metrics
var (
	// AgentRequestsTotal counts agent invocations by agent and status
	AgentRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_requests_total",
			Help: "Total number of agent invocations",
		},
		[]string{"agent", "status"},
	)

	// ExternalCallsTotal counts outbound collaborator calls by service and status
	ExternalCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_calls_total",
			Help: "Outbound calls to external collaborators",
		},
		[]string{"service", "status"},
	)

	// ExternalCallDuration measures outbound call latency
	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "external_call_duration_seconds",
			Help:    "Outbound call latency by service",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"service"},
	)

	// CacheLookupsTotal counts cache lookups by result (hit, miss, error)
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		},
		[]string{"result"},
	)
)
