package config

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/robfig/cron/v3"
)

// ValidationError names the configuration field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Field: "log_level", Message: "must be one of: debug, info, warn, error"}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ValidationError{Field: "server.port", Message: "must be between 1 and 65535"}
	}

	if err := c.Storage.validate(); err != nil {
		return err
	}
	return c.Pipeline.validate()
}

func (s StorageConfig) validate() error {
	switch s.Driver {
	case DriverMemory:
		return nil
	case DriverSQLite, DriverPostgres:
		if s.DSN == "" {
			return &ValidationError{Field: "storage.dsn", Message: "is required for " + s.Driver}
		}
	case DriverRedis:
		if s.RedisAddr == "" {
			return &ValidationError{Field: "storage.redis_addr", Message: "is required for redis"}
		}
	default:
		return &ValidationError{Field: "storage.driver", Message: "must be one of: memory, sqlite, postgres, redis"}
	}
	return nil
}

func (p PipelineConfig) validate() error {
	if p.Debounce < 0 {
		return &ValidationError{Field: "pipeline.debounce", Message: "must not be negative"}
	}
	if p.CacheMaxEntries < 1 {
		return &ValidationError{Field: "pipeline.cache_max_entries", Message: "must be positive"}
	}

	switch p.Source.Kind {
	case SourceFile:
		if p.Watch && p.Output != "" && filepath.Clean(p.Output) == filepath.Clean(p.Source.Path) {
			return &ValidationError{Field: "pipeline.output", Message: "must differ from the watched source path"}
		}
	case SourceHTTP:
		if p.Watch {
			return &ValidationError{Field: "pipeline.watch", Message: "is only supported for file sources"}
		}
		if p.Source.URL != "" {
			if u, err := url.Parse(p.Source.URL); err != nil || u.Scheme == "" || u.Host == "" {
				return &ValidationError{Field: "pipeline.source.url", Message: "must be an absolute URL"}
			}
		}
		if p.Source.RatePerSecond <= 0 {
			return &ValidationError{Field: "pipeline.source.rate_per_second", Message: "must be positive"}
		}
	default:
		return &ValidationError{Field: "pipeline.source.kind", Message: "must be one of: file, http"}
	}

	if p.Schedule != "" {
		if _, err := cron.ParseStandard(p.Schedule); err != nil {
			return &ValidationError{Field: "pipeline.schedule", Message: err.Error()}
		}
	}
	return nil
}
