package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		providerCallsTotal,
		providerCallLatencySeconds,
		videoPolls,
	)
}

var (
	providerCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_calls_total",
			Help: "Provider calls per operation/model/outcome (ok, refused, error).",
		},
		[]string{"op", "model", "outcome"},
	)

	providerCallLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_call_latency_seconds",
			Help:    "Provider call latency distribution in seconds.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 160, 320},
		},
		[]string{"op", "model", "success"},
	)

	videoPolls = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_operation_polls",
			Help:    "Number of polls before a video operation settled.",
			Buckets: []float64{1, 3, 6, 12, 24, 36, 48, 60},
		},
		[]string{"model", "success"},
	)
)

// ObserveProviderCall records one analyze/image/video call.
func ObserveProviderCall(op, model, outcome string, latency time.Duration) {
	providerCallsTotal.WithLabelValues(norm(op), norm(model), norm(outcome)).Inc()
	success := strconv.FormatBool(norm(outcome) == "ok")
	providerCallLatencySeconds.WithLabelValues(norm(op), norm(model), success).Observe(latency.Seconds())
}

func ObserveVideoPolls(model string, polls int, success bool) {
	videoPolls.WithLabelValues(norm(model), strconv.FormatBool(success)).Observe(float64(polls))
}
