package blobgate

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blobgate_requests_total",
			Help: "Dispatched gateway requests by resolved action and status code.",
		},
		[]string{"action", "status"},
	)
	bestEffortFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blobgate_best_effort_failures_total",
			Help: "Failures of best-effort secondary operations, by operation.",
		},
		[]string{"op"},
	)
	pipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blobgate_pipeline_runs_total",
			Help: "Derived-resource pipeline runs by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, bestEffortFailuresTotal, pipelineRunsTotal)
}

// ObservePipelineRun records a pipeline run outcome. Exported for the
// pipeline subpackage.
func ObservePipelineRun(outcome string) {
	pipelineRunsTotal.WithLabelValues(outcome).Inc()
}
