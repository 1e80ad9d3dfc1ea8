/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"blogroll/config"

	"github.com/urfave/cli/v2"
)

// configFlags are shared by every command that runs an aggregation pass.
// Flag defaults are only documentation, values are resolved by resolveConfig.
func configFlags() []cli.Flag {
	defaults := config.Defaults()

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to TOML configuration file",
			EnvVars: []string{"BLOGROLL_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "source-list-url",
			Aliases: []string{"s"},
			Usage:   "URL or path of the source list (JSON, YAML or TOML)",
			EnvVars: []string{"BLOGROLL_SOURCE_LIST_URL"},
		},
		&cli.IntFlag{
			Name:    "cache-ttl-seconds",
			Value:   defaults.CacheTTLSeconds,
			Usage:   "How long responses are cached, 0 disables caching",
			EnvVars: []string{"BLOGROLL_CACHE_TTL_SECONDS"},
		},
		&cli.IntFlag{
			Name:    "max-entries",
			Value:   defaults.MaxEntries,
			Usage:   "Maximum number of entries returned",
			EnvVars: []string{"BLOGROLL_MAX_ENTRIES"},
		},
		&cli.IntFlag{
			Name:    "days-limit",
			Value:   defaults.DaysLimit,
			Usage:   "Drop entries older than this many days, 0 keeps everything",
			EnvVars: []string{"BLOGROLL_DAYS_LIMIT"},
		},
		&cli.IntFlag{
			Name:    "fetch-timeout-millis",
			Value:   defaults.FetchTimeoutMillis,
			Usage:   "Timeout of a single feed fetch attempt",
			EnvVars: []string{"BLOGROLL_FETCH_TIMEOUT_MILLIS"},
		},
		&cli.IntFlag{
			Name:    "summary-char-limit",
			Value:   defaults.SummaryCharLimit,
			Usage:   "Maximum summary length, 0 disables summaries",
			EnvVars: []string{"BLOGROLL_SUMMARY_CHAR_LIMIT"},
		},
		&cli.IntFlag{
			Name:    "retry-attempts",
			Value:   defaults.RetryAttempts,
			Usage:   "Fetch attempts per feed",
			EnvVars: []string{"BLOGROLL_RETRY_ATTEMPTS"},
		},
		&cli.IntFlag{
			Name:    "retry-delay",
			Value:   defaults.RetryDelayMillis,
			Usage:   "Delay between fetch attempts in milliseconds",
			EnvVars: []string{"BLOGROLL_RETRY_DELAY"},
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Value:   defaults.Concurrency,
			Usage:   "Maximum feeds fetched at once, 0 fetches all at once",
			EnvVars: []string{"BLOGROLL_CONCURRENCY"},
		},
		&cli.StringFlag{
			Name:    "user-agent",
			Value:   defaults.UserAgent,
			Usage:   "User-Agent header sent with every fetch",
			EnvVars: []string{"BLOGROLL_USER_AGENT"},
		},
	}
}

func cacheFlags() []cli.Flag {
	defaults := config.Defaults()

	return []cli.Flag{
		&cli.StringFlag{
			Name:    "cache",
			Value:   defaults.CacheBackend,
			Usage:   "Response cache backend: memory, sqlite or none",
			EnvVars: []string{"BLOGROLL_CACHE"},
		},
		&cli.IntFlag{
			Name:    "cache-size",
			Value:   defaults.CacheSize,
			Usage:   "Maximum responses held by the memory cache",
			EnvVars: []string{"BLOGROLL_CACHE_SIZE"},
		},
		databaseFlag(),
	}
}

func databaseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "database",
		Aliases: []string{"d"},
		Value:   config.Defaults().Database,
		Usage:   "SQLite database file location",
		EnvVars: []string{"BLOGROLL_DATABASE"},
	}
}

// resolveConfig layers defaults, the optional config file and explicitly set
// flags, in that order, and validates the result.
func resolveConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Defaults()
	if path := ctx.String("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	setString := func(flag string, target *string) {
		if ctx.IsSet(flag) {
			*target = ctx.String(flag)
		}
	}
	setInt := func(flag string, target *int) {
		if ctx.IsSet(flag) {
			*target = ctx.Int(flag)
		}
	}

	setString("source-list-url", &cfg.SourceListURL)
	setInt("cache-ttl-seconds", &cfg.CacheTTLSeconds)
	setInt("max-entries", &cfg.MaxEntries)
	setInt("days-limit", &cfg.DaysLimit)
	setInt("fetch-timeout-millis", &cfg.FetchTimeoutMillis)
	setInt("summary-char-limit", &cfg.SummaryCharLimit)
	setInt("retry-attempts", &cfg.RetryAttempts)
	setInt("retry-delay", &cfg.RetryDelayMillis)
	setInt("concurrency", &cfg.Concurrency)
	setString("user-agent", &cfg.UserAgent)
	setString("cache", &cfg.CacheBackend)
	setInt("cache-size", &cfg.CacheSize)
	setString("database", &cfg.Database)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
