package aggregator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sourceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogroll_source_failures_total",
		Help: "Sources that contributed no entries because fetching or parsing failed",
	})

	aggregatedEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blogroll_aggregated_entries",
		Help: "Number of entries produced by the last aggregation pass",
	})

	aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blogroll_aggregation_duration_seconds",
		Help:    "Duration of full aggregation passes",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms up to ~25s
	})
)
