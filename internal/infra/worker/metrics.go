package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the worker's Prometheus collectors.
type Metrics struct {
	RunsTotal           *prometheus.CounterVec
	RunDurationSeconds  prometheus.Histogram
	KeysWarmedTotal     *prometheus.CounterVec
	LastSuccessTime     prometheus.Gauge
	ConfigFallbackTotal *prometheus.CounterVec
}

// NewMetrics registers the worker collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_warm_runs_total",
			Help: "Total number of cache warming runs by status (success/partial/failure)",
		}, []string{"status"}),
		RunDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_warm_run_duration_seconds",
			Help:    "Duration of one cache warming run in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		KeysWarmedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_keys_warmed_total",
			Help: "Total number of cache keys refreshed by result (success/failure)",
		}, []string{"result"}),
		LastSuccessTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_warm_last_success_timestamp",
			Help: "Unix timestamp of the last run that refreshed every key",
		}),
		ConfigFallbackTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_config_fallbacks_total",
			Help: "Total number of invalid worker settings replaced by defaults",
		}, []string{"field"}),
	}
}

// RecordRun records one warming run.
func (m *Metrics) RecordRun(stats RunStats) {
	m.RunsTotal.WithLabelValues(stats.Status()).Inc()
	m.RunDurationSeconds.Observe(stats.Duration.Seconds())
	m.KeysWarmedTotal.WithLabelValues("success").Add(float64(stats.Warmed))
	m.KeysWarmedTotal.WithLabelValues("failure").Add(float64(stats.Failed))
	if stats.Failed == 0 {
		m.LastSuccessTime.SetToCurrentTime()
	}
}

// RecordConfigFallback counts a setting replaced by its default.
func (m *Metrics) RecordConfigFallback(field string) {
	m.ConfigFallbackTotal.WithLabelValues(field).Inc()
}
