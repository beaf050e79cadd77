package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(exportsTotal, exportPages, exportLatencyMs) }

var (
	exportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_exports_total",
			Help: "PDF exports by result (success/failure/busy).",
		},
		[]string{"result"},
	)

	exportPages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdf_export_pages",
			Help:    "Pages per exported PDF.",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12},
		},
	)

	exportLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdf_export_latency_ms",
			Help:    "End-to-end export latency in milliseconds.",
			Buckets: []float64{250, 500, 1000, 2000, 4000, 8000, 16000, 32000},
		},
	)
)

func IncExport(result string) {
	exportsTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveExport(pages int, elapsed time.Duration) {
	exportPages.Observe(float64(pages))
	exportLatencyMs.Observe(float64(elapsed.Milliseconds()))
}
