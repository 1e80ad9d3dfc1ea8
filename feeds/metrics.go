package feeds

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var parseFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "blogroll_feed_parse_failures_total",
	Help: "Feeds whose document could not be parsed",
})
