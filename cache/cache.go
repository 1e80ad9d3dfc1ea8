package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

const writeTimeout = 10 * time.Second

var (
	lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogroll_response_cache_lookups_total",
		Help: "Response cache lookups by result",
	}, []string{"result"})

	writeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blogroll_response_cache_write_failures_total",
		Help: "Response cache writes that failed",
	})
)

// Gateway stores serialized responses keyed by request identity. Entries
// expire after the time-to-live the gateway was created with.
type Gateway interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Lookup reads key and treats lookup errors as misses
func Lookup(ctx context.Context, gw Gateway, key string) ([]byte, bool) {
	value, ok, err := gw.Get(ctx, key)
	if err != nil {
		lookups.WithLabelValues("error").Inc()
		log.WithFields(log.Fields{
			"key":   key,
			"error": err,
		}).Warn("Response cache lookup failed")
		return nil, false
	}
	if !ok {
		lookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	lookups.WithLabelValues("hit").Inc()
	return value, true
}

// WriteBehind stores value in the background. The caller never waits for
// the write and a failure is only logged. The returned channel is closed
// once the write has finished.
func WriteBehind(gw Gateway, key string, value []byte) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				writeFailures.Inc()
				log.WithFields(log.Fields{
					"key":   key,
					"panic": r,
				}).Error("Response cache write panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := gw.Set(ctx, key, value); err != nil {
			writeFailures.Inc()
			log.WithFields(log.Fields{
				"key":   key,
				"error": err,
			}).Warn("Response cache write failed")
		}
	}()

	return done
}
