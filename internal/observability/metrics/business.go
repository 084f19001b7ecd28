package metrics

import (
	"strconv"
	"time"
)

// RecordHTTPRequest records an HTTP request with its metadata.
func RecordHTTPRequest(method, path string, status int, duration time.Duration, responseSize int) {
	code := strconv.Itoa(status)
	HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordAnalysis records one finished pipeline run.
func RecordAnalysis(outcome string, score int, duration time.Duration) {
	AnalysisRunsTotal.WithLabelValues(outcome).Inc()
	AnalysisDuration.Observe(duration.Seconds())
	VerificationScore.Observe(float64(score))
}

// RecordArticlesDropped records candidates removed before scoring.
// Zero counts are ignored.
func RecordArticlesDropped(reason string, count int) {
	if count <= 0 {
		return
	}
	ArticlesDroppedTotal.WithLabelValues(reason).Add(float64(count))
}

// RecordLLMFallback records that an LLM-backed stage used its fallback.
func RecordLLMFallback(stage string) {
	LLMFallbacksTotal.WithLabelValues(stage).Inc()
}

// RecordAgentRequest records an agent invocation. Status is "success" or "error".
func RecordAgentRequest(agent string, success bool) {
	AgentRequestsTotal.WithLabelValues(agent, statusLabel(success)).Inc()
}

// RecordExternalCall records one outbound collaborator call.
//
// Example:
//
//	start := time.Now()
//	entries, err := feed.Search(ctx, query, limit)
//	metrics.RecordExternalCall("news_feed", err == nil, time.Since(start))
func RecordExternalCall(service string, success bool, duration time.Duration) {
	ExternalCallsTotal.WithLabelValues(service, statusLabel(success)).Inc()
	ExternalCallDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache lookup result: "hit", "miss" or "error".
func RecordCacheLookup(result string) {
	CacheLookupsTotal.WithLabelValues(result).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
