package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogroll_feed_fetch_attempts_total",
		Help: "The total number of feed requests, retries included",
	})

	fetchAttemptFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogroll_feed_fetch_attempt_failures_total",
		Help: "Failed feed requests by reason",
	}, []string{"reason"})

	fetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogroll_feed_fetch_failures_total",
		Help: "Feeds that could not be fetched after all retries",
	})
)
