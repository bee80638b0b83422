package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(runsTotal, runDurationSeconds, activeJobs) }

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runs_total",
			Help: "Runs by outcome (results, aborted).",
		},
		[]string{"outcome", "reason"},
	)

	runDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "run_duration_seconds",
			Help:    "Wall time from submit to results.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 8),
		},
	)

	activeJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_generation_jobs",
			Help: "Jobs currently between dispatch and a terminal state.",
		},
	)
)

func IncRun(outcome, reason string) {
	runsTotal.WithLabelValues(norm(outcome), norm(reason)).Inc()
}

func ObserveRunDuration(d time.Duration) { runDurationSeconds.Observe(d.Seconds()) }

func AddActiveJobs(n int) { activeJobs.Add(float64(n)) }
