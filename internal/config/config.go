// Package config loads deal-filter configuration from a YAML file, the
// environment and command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. DEAL_FILTER_SERVER_PORT.
const EnvPrefix = "DEAL_FILTER"

// Defaults.
const (
	DefaultPort            = 8095
	DefaultDebounce        = 120 * time.Millisecond
	DefaultCacheMaxEntries = 5000
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultSQLiteDSN       = "deal-filter.db"
	DefaultKeyPrefix       = "deal-filter:"
	DefaultUserAgent       = "deal-filter/1.0"
	DefaultRatePerSecond   = 1.0
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Source kinds.
const (
	SourceFile = "file"
	SourceHTTP = "http"
)

// Config is the complete application configuration.
type Config struct {
	Debug    bool           `mapstructure:"debug"     yaml:"debug"`
	LogLevel string         `mapstructure:"log_level" yaml:"log_level"`
	Server   ServerConfig   `mapstructure:"server"    yaml:"server"`
	Storage  StorageConfig  `mapstructure:"storage"   yaml:"storage"`
	Pipeline PipelineConfig `mapstructure:"pipeline"  yaml:"pipeline"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `mapstructure:"host"             yaml:"host"`
	Port            int           `mapstructure:"port"             yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"     yaml:"cors_origins"`
	// JWTSecret enables bearer-token auth on mutating routes when set.
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
}

// Address returns host:port.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects the settings persistence backend.
type StorageConfig struct {
	Driver        string `mapstructure:"driver"         yaml:"driver"`
	DSN           string `mapstructure:"dsn"            yaml:"dsn"`
	RedisAddr     string `mapstructure:"redis_addr"     yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"       yaml:"redis_db"`
	KeyPrefix     string `mapstructure:"key_prefix"     yaml:"key_prefix"`
}

// PipelineConfig controls how and when evaluation passes run.
type PipelineConfig struct {
	Debounce        time.Duration `mapstructure:"debounce"          yaml:"debounce"`
	CacheMaxEntries int           `mapstructure:"cache_max_entries" yaml:"cache_max_entries"`
	Source          SourceConfig  `mapstructure:"source"            yaml:"source"`
	// Schedule is an optional cron spec that triggers a pass.
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
	// Watch re-runs a pass whenever the file source changes on disk.
	Watch bool `mapstructure:"watch" yaml:"watch"`
	// Output is where the filtered document is written after every pass.
	Output string `mapstructure:"output" yaml:"output"`
}

// SourceConfig describes where listing pages come from.
type SourceConfig struct {
	Kind          string  `mapstructure:"kind"            yaml:"kind"`
	Path          string  `mapstructure:"path"            yaml:"path"`
	URL           string  `mapstructure:"url"             yaml:"url"`
	UserAgent     string  `mapstructure:"user_agent"      yaml:"user_agent"`
	RatePerSecond float64 `mapstructure:"rate_per_second" yaml:"rate_per_second"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_level", "info")

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.jwt_secret", "")

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.dsn", DefaultSQLiteDSN)
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.key_prefix", DefaultKeyPrefix)

	v.SetDefault("pipeline.debounce", DefaultDebounce)
	v.SetDefault("pipeline.cache_max_entries", DefaultCacheMaxEntries)
	v.SetDefault("pipeline.source.kind", SourceFile)
	v.SetDefault("pipeline.source.path", "")
	v.SetDefault("pipeline.source.url", "")
	v.SetDefault("pipeline.source.user_agent", DefaultUserAgent)
	v.SetDefault("pipeline.source.rate_per_second", DefaultRatePerSecond)
	v.SetDefault("pipeline.schedule", "")
	v.SetDefault("pipeline.watch", false)
	v.SetDefault("pipeline.output", "")
}

// NewViper returns a viper instance with defaults and environment binding applied.
// configFile may be empty, in which case config.yml is searched in the
// working directory and ./config.
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads the config file (optional unless explicitly named), decodes it
// and validates the result.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
