/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"blogroll/aggregator"
	"blogroll/cache"
	"blogroll/config"
	"blogroll/db"
	"blogroll/feeds"
	"blogroll/fetcher"
	"blogroll/sources"

	log "github.com/sirupsen/logrus"
)

func newAggregator(cfg *config.Config) *aggregator.Aggregator {
	f := fetcher.New(fetcher.Config{
		Timeout: cfg.FetchTimeout(),
		Policy: fetcher.RetryPolicy{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay(),
		},
		UserAgent: cfg.UserAgent,
	})

	parser := &feeds.Parser{
		DaysLimit:    cfg.DaysLimit,
		SummaryLimit: cfg.SummaryCharLimit,
	}

	return aggregator.New(f, parser, aggregator.Config{
		MaxEntries:  cfg.MaxEntries,
		Concurrency: cfg.Concurrency,
	})
}

func newSourceLoader(cfg *config.Config) *sources.Loader {
	return sources.NewLoader(cfg.FetchTimeout())
}

// newCache returns the configured response cache. The sqlite cache is also
// returned on its own so the caller can close and tidy it.
func newCache(cfg *config.Config) (cache.Gateway, *db.Cache, error) {
	if cfg.CacheTTLSeconds == 0 {
		log.Info("Response cache disabled, cache ttl is 0")
		return cache.Noop{}, nil, nil
	}

	switch cfg.CacheBackend {
	case config.CacheBackendSQLite:
		sqliteCache, err := db.NewCache(cfg.Database, cfg.CacheTTL())
		if err != nil {
			return nil, nil, err
		}
		return sqliteCache, sqliteCache, nil
	case config.CacheBackendNone:
		return cache.Noop{}, nil, nil
	default:
		return cache.NewMemory(cfg.CacheSize, cfg.CacheTTL()), nil, nil
	}
}
