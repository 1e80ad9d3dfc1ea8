package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"blogroll/config"
	"blogroll/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := config.Defaults()

	assert.Equal(t, 600, cfg.CacheTTLSeconds)
	assert.Equal(t, 50, cfg.MaxEntries)
	assert.Equal(t, 30, cfg.DaysLimit)
	assert.Equal(t, 10000, cfg.FetchTimeoutMillis)
	assert.Equal(t, 100, cfg.SummaryCharLimit)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout())
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL())
	assert.Equal(t, time.Second, cfg.RetryDelay())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogroll.toml")
	err := os.WriteFile(path, []byte(`
source_list_url = "https://example.com/friends.yaml"
max_entries = 20
cache_backend = "sqlite"
`), 0o644)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/friends.yaml", cfg.SourceListURL)
	assert.Equal(t, 20, cfg.MaxEntries)
	assert.Equal(t, config.CacheBackendSQLite, cfg.CacheBackend)
	// Untouched keys keep their defaults
	assert.Equal(t, 30, cfg.DaysLimit)
	assert.Equal(t, 100, cfg.SummaryCharLimit)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_entries = = 3"), 0o644))
	_, err = config.LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		field   string
		wantErr bool
	}{
		{
			name:    "valid",
			mutate:  func(c *config.Config) {},
			wantErr: false,
		},
		{
			name:    "missing source list url",
			mutate:  func(c *config.Config) { c.SourceListURL = "" },
			field:   "source_list_url",
			wantErr: true,
		},
		{
			name:    "negative max entries",
			mutate:  func(c *config.Config) { c.MaxEntries = -1 },
			field:   "max_entries",
			wantErr: true,
		},
		{
			name:    "zero retry attempts",
			mutate:  func(c *config.Config) { c.RetryAttempts = 0 },
			field:   "retry_attempts",
			wantErr: true,
		},
		{
			name:    "unknown cache backend",
			mutate:  func(c *config.Config) { c.CacheBackend = "redis" },
			field:   "cache_backend",
			wantErr: true,
		},
		{
			name:    "zero summary limit is allowed",
			mutate:  func(c *config.Config) { c.SummaryCharLimit = 0 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.SourceListURL = "https://example.com/friends.json"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var configErr *models.ConfigurationError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, tt.field, configErr.Field)
		})
	}
}
