package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PipelineMetrics struct {
	EmitLatencyMS prometheus.Histogram
}

var (
	pipelineOnce sync.Once
	pipeline     *PipelineMetrics
)

func Pipeline() *PipelineMetrics {
	pipelineOnce.Do(func() {
		r := Registerer()
		pipeline = &PipelineMetrics{
			EmitLatencyMS: promauto.With(r).NewHistogram(prometheus.HistogramOpts{
				Name:    "binding_emit_latency_ms",
				Help:    "latency of a single emit: encode, produce with retries (ms)",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000},
			}),
		}
	})
	return pipeline
}
