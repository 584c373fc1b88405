package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SourceMetrics tracks the input side feeding the binding.
type SourceMetrics struct {
	LinesReadTotal         prometheus.Counter
	BlankLinesSkippedTotal prometheus.Counter
	LastLineTimestamp      prometheus.Gauge
}

var (
	sourceOnce sync.Once
	source     *SourceMetrics
)

func Source() *SourceMetrics {
	sourceOnce.Do(func() {
		r := Registerer()
		source = &SourceMetrics{
			LinesReadTotal: promauto.With(r).NewCounter(prometheus.CounterOpts{
				Name: "source_lines_read_total",
				Help: "input lines read, blank ones included",
			}),
			BlankLinesSkippedTotal: promauto.With(r).NewCounter(prometheus.CounterOpts{
				Name: "source_blank_lines_skipped_total",
				Help: "blank input lines dropped before decoding",
			}),
			LastLineTimestamp: promauto.With(r).NewGauge(prometheus.GaugeOpts{
				Name: "source_last_line_timestamp_seconds",
				Help: "unix time the last input line was read",
			}),
		}
	})
	return source
}
