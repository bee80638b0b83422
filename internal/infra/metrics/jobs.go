package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(generationJobsTotal, fallbackAttemptsTotal, degradedVideosTotal) }

var generationJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generation_jobs_total",
		Help: "Generation jobs that reached a terminal state, labeled by status and mode.",
	},
	[]string{"status", "mode"}, // 'completed', 'failed'
)

var fallbackAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "image_fallback_attempts_total",
		Help: "Refusal-triggered fallback attempts, labeled by result.",
	},
	[]string{"result"}, // 'ok', 'failed'
)

var degradedVideosTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "video_degraded_jobs_total",
		Help: "Jobs completed with an image but without the requested video.",
	},
)

func IncJob(status, mode string) {
	generationJobsTotal.WithLabelValues(norm(status), norm(mode)).Inc()
}

func IncFallback(result string) {
	fallbackAttemptsTotal.WithLabelValues(norm(result)).Inc()
}

func IncDegradedVideo() { degradedVideosTotal.Inc() }
