package llm

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder defines the interface for recording LLM call metrics.
// Tests inject a recorder that keeps the observations in memory.
type MetricsRecorder interface {
	// RecordRequest records one API round trip. Operation is "complete",
	// "complete_with_tools" or "analyze_image".
	RecordRequest(provider, operation string, success bool, duration time.Duration)

	// RecordToolCall records one tool invocation requested by the model.
	RecordToolCall(provider, tool string, success bool)

	// RecordToolRounds records how many rounds a tool loop took.
	RecordToolRounds(provider string, rounds int)
}

// PrometheusMetrics implements MetricsRecorder using Prometheus metrics.
type PrometheusMetrics struct {
	requests   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	toolCalls  *prometheus.CounterVec
	toolRounds *prometheus.HistogramVec
}

var (
	prometheusMetricsInstance *PrometheusMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateCounterVec returns the already registered collector when a
// previous instance registered the same name.
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

// NewPrometheusMetrics returns the process-wide Prometheus recorder.
func NewPrometheusMetrics() *PrometheusMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusMetrics{
			requests: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Total number of LLM API requests",
			}, []string{"provider", "operation", "status"}),
			duration: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "llm_request_duration_seconds",
				Help:    "LLM API request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			}, []string{"provider", "operation"}),
			toolCalls: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "llm_tool_calls_total",
				Help: "Total number of tool calls requested by the model",
			}, []string{"provider", "tool", "status"}),
			toolRounds: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "llm_tool_loop_rounds",
				Help:    "Number of model round trips per tool loop",
				Buckets: []float64{1, 2, 3, 4, 5},
			}, []string{"provider"}),
		}
	})
	return prometheusMetricsInstance
}

// RecordRequest implements MetricsRecorder.
func (p *PrometheusMetrics) RecordRequest(provider, operation string, success bool, duration time.Duration) {
	p.requests.WithLabelValues(provider, operation, status(success)).Inc()
	p.duration.WithLabelValues(provider, operation).Observe(duration.Seconds())
}

// RecordToolCall implements MetricsRecorder.
func (p *PrometheusMetrics) RecordToolCall(provider, tool string, success bool) {
	p.toolCalls.WithLabelValues(provider, tool, status(success)).Inc()
}

// RecordToolRounds implements MetricsRecorder.
func (p *PrometheusMetrics) RecordToolRounds(provider string, rounds int) {
	p.toolRounds.WithLabelValues(provider).Observe(float64(rounds))
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
