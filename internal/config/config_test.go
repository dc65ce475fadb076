package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/deal-filter/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := config.Load(config.NewViper(path))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultDebounce, cfg.Pipeline.Debounce)
	assert.Equal(t, config.DefaultCacheMaxEntries, cfg.Pipeline.CacheMaxEntries)
	assert.Equal(t, config.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FileValues(t *testing.T) {
	path := writeConfig(t, `
debug: true
server:
  port: 9001
storage:
  driver: memory
pipeline:
  debounce: 250ms
  schedule: "*/5 * * * *"
  source:
    kind: file
    path: deals.html
`)

	cfg, err := config.Load(config.NewViper(path))
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Pipeline.Debounce)
	assert.Equal(t, "deals.html", cfg.Pipeline.Source.Path)
	assert.Equal(t, ":9001", cfg.Server.Address())
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9001\n")
	t.Setenv("DEAL_FILTER_SERVER_PORT", "9100")

	cfg, err := config.Load(config.NewViper(path))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(config.NewViper(filepath.Join(t.TempDir(), "nope.yml")))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		return config.Config{
			LogLevel: "info",
			Server:   config.ServerConfig{Port: 8095},
			Storage:  config.StorageConfig{Driver: config.DriverMemory},
			Pipeline: config.PipelineConfig{
				CacheMaxEntries: 10,
				Source:          config.SourceConfig{Kind: config.SourceFile},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "bad level", mutate: func(c *config.Config) { c.LogLevel = "loud" }, field: "log_level"},
		{name: "bad port", mutate: func(c *config.Config) { c.Server.Port = 0 }, field: "server.port"},
		{name: "unknown driver", mutate: func(c *config.Config) { c.Storage.Driver = "mongo" }, field: "storage.driver"},
		{name: "sqlite without dsn", mutate: func(c *config.Config) { c.Storage.Driver = config.DriverSQLite }, field: "storage.dsn"},
		{name: "zero cache", mutate: func(c *config.Config) { c.Pipeline.CacheMaxEntries = 0 }, field: "pipeline.cache_max_entries"},
		{name: "bad schedule", mutate: func(c *config.Config) { c.Pipeline.Schedule = "every minute" }, field: "pipeline.schedule"},
		{
			name: "relative url",
			mutate: func(c *config.Config) {
				c.Pipeline.Source = config.SourceConfig{Kind: config.SourceHTTP, URL: "/deals", RatePerSecond: 1}
			},
			field: "pipeline.source.url",
		},
		{
			name: "output overwrites watched file",
			mutate: func(c *config.Config) {
				c.Pipeline.Watch = true
				c.Pipeline.Source.Path = "deals.html"
				c.Pipeline.Output = "./deals.html"
			},
			field: "pipeline.output",
		},
		{
			name: "watch over http",
			mutate: func(c *config.Config) {
				c.Pipeline.Watch = true
				c.Pipeline.Source = config.SourceConfig{Kind: config.SourceHTTP, URL: "https://example.com", RatePerSecond: 1}
			},
			field: "pipeline.watch",
		},
		{name: "unknown source", mutate: func(c *config.Config) { c.Pipeline.Source.Kind = "ftp" }, field: "pipeline.source.kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var vErr *config.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}
