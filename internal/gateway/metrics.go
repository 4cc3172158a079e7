package gateway

import "github.com/prometheus/client_golang/prometheus"

var (
	statementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlgate_statements_total",
			Help: "Total number of classified statements by category.",
		},
		[]string{"category"},
	)
	policyRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlgate_policy_rejections_total",
			Help: "Total number of batches rejected before execution, by reason.",
		},
		[]string{"reason"},
	)
	batchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlgate_batches_total",
			Help: "Total number of executed batches by outcome.",
		},
		[]string{"outcome"},
	)
	batchDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sqlgate_batch_duration_seconds",
			Help:    "End-to-end batch execution latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sqlgate_sessions_active",
			Help: "Number of sessions holding a database connection.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		statementsTotal,
		policyRejectionsTotal,
		batchesTotal,
		batchDurationSeconds,
		sessionsActive,
	)
}
