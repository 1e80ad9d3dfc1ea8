package config

import (
	"fmt"
	"os"
	"time"

	"blogroll/models"

	"github.com/BurntSushi/toml"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendSQLite = "sqlite"
	CacheBackendNone   = "none"
)

// Config holds every tuning knob of the aggregation service. Values are
// resolved once per process from defaults, an optional TOML file and flags.
type Config struct {
	SourceListURL      string `toml:"source_list_url"`
	CacheTTLSeconds    int    `toml:"cache_ttl_seconds"`
	MaxEntries         int    `toml:"max_entries"`
	DaysLimit          int    `toml:"days_limit"`
	FetchTimeoutMillis int    `toml:"fetch_timeout_millis"`
	SummaryCharLimit   int    `toml:"summary_char_limit"`
	RetryAttempts      int    `toml:"retry_attempts"`
	RetryDelayMillis   int    `toml:"retry_delay_millis"`
	Concurrency        int    `toml:"concurrency"` // 0 launches one task per source
	UserAgent          string `toml:"user_agent"`

	CacheBackend string `toml:"cache_backend"`
	CacheSize    int    `toml:"cache_size"`
	Database     string `toml:"database"`
}

func Defaults() Config {
	return Config{
		CacheTTLSeconds:    600,
		MaxEntries:         50,
		DaysLimit:          30,
		FetchTimeoutMillis: 10000,
		SummaryCharLimit:   100,
		RetryAttempts:      3,
		RetryDelayMillis:   1000,
		Concurrency:        0,
		UserAgent:          "blogroll/1.0 (+feed aggregator)",
		CacheBackend:       CacheBackendMemory,
		CacheSize:          128,
		Database:           "cache.db",
	}
}

// LoadConfig reads a TOML file on top of the defaults. Keys missing from
// the file keep their default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := Defaults()
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.SourceListURL == "" {
		return &models.ConfigurationError{Field: "source_list_url", Reason: "is required"}
	}

	nonNegative := map[string]int{
		"cache_ttl_seconds":    c.CacheTTLSeconds,
		"max_entries":          c.MaxEntries,
		"fetch_timeout_millis": c.FetchTimeoutMillis,
		"retry_delay_millis":   c.RetryDelayMillis,
		"concurrency":          c.Concurrency,
	}
	for field, value := range nonNegative {
		if value < 0 {
			return &models.ConfigurationError{Field: field, Reason: "must not be negative"}
		}
	}

	if c.RetryAttempts < 1 {
		return &models.ConfigurationError{Field: "retry_attempts", Reason: "must be at least 1"}
	}

	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendSQLite, CacheBackendNone:
	default:
		return &models.ConfigurationError{Field: "cache_backend", Reason: fmt.Sprintf("has unknown value %q", c.CacheBackend)}
	}

	return nil
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMillis) * time.Millisecond
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMillis) * time.Millisecond
}
