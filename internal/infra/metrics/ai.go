package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiTokensIn,
		aiCallsLatencyMs,
		generationsTotal,
		imagesTotal,
	)
}

var (
	aiTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_tokens_in",
			Help: "Estimated prompt (input) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 30000, 60000},
		},
		[]string{"provider", "model", "kind", "success"},
	)

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "question_generations_total",
			Help: "Question generations by subject and result.",
		},
		[]string{"subject", "result"},
	)

	imagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scenario_images_total",
			Help: "Scenario image generations by result (success/failure/stale).",
		},
		[]string{"result"},
	)
)

// ObserveAICall records one provider call. kind is "text" or "image".
func ObserveAICall(provider, model, kind string, promptTokens int, elapsed time.Duration, success bool) {
	if promptTokens > 0 {
		aiTokensIn.WithLabelValues(norm(provider), norm(model)).Add(float64(promptTokens))
	}
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(model), norm(kind), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

func IncGeneration(subject string, ok bool) {
	generationsTotal.WithLabelValues(norm(subject), successLabel(ok)).Inc()
}

func IncImage(result string) {
	imagesTotal.WithLabelValues(norm(result)).Inc()
}
