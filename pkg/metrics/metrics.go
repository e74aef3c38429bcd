// Package metrics provides Prometheus collectors for generation traffic.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets are histogram buckets suited for local inference latencies, 50ms to 120s.
var LLMBuckets = []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Generation modes used as the "mode" label
const (
	ModeStream   = "stream"
	ModeComplete = "complete"
)

// Generation outcomes used as the "status" label
const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	// GenerationsTotal counts generations by backend, mode and outcome.
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talk_lmstudio_generations_total",
			Help: "Generations by outcome",
		},
		[]string{"backend", "mode", "status"},
	)

	// GenerationDuration records end-to-end generation latency in seconds.
	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "talk_lmstudio_generation_duration_seconds",
			Help:    "Generation duration",
			Buckets: LLMBuckets,
		},
		[]string{"backend", "mode"},
	)

	// TimeToFirstToken records the delay before the first text token arrives.
	TimeToFirstToken = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "talk_lmstudio_time_to_first_token_seconds",
			Help:    "Time to first token",
			Buckets: LLMBuckets,
		},
		[]string{"backend"},
	)

	// TokensTotal counts non-final text tokens delivered to callers.
	TokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talk_lmstudio_tokens_total",
			Help: "Text tokens delivered",
		},
		[]string{"backend"},
	)

	// ActiveGenerations tracks generations currently in flight.
	ActiveGenerations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "talk_lmstudio_generations_active",
			Help: "Generations in flight",
		},
	)
)

func init() {
	prometheus.MustRegister(
		GenerationsTotal,
		GenerationDuration,
		TimeToFirstToken,
		TokensTotal,
		ActiveGenerations,
	)
}

// Mode maps the stream flag of a generation to its label value
func Mode(stream bool) string {
	if stream {
		return ModeStream
	}
	return ModeComplete
}

// Status maps a generation error to its label value
func Status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}
