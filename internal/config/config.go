// Package config provides configuration management for clipforge using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort      = 8080
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultStageTimeout    = 2 * time.Minute
	defaultStageRetryDelay = 5 * time.Second
	defaultBatchLimit      = 10
	defaultStatsInterval   = 15 * time.Minute
	defaultProviderTimeout = 60 * time.Second
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Stats     StatsConfig     `mapstructure:"stats"`
	Providers ProvidersConfig `mapstructure:"providers"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// PipelineConfig holds production pipeline configuration.
// Retry is per stage and bounded; zero attempts means a stage failure
// marks the item FAILED immediately, leaving retry to a user re-run.
type PipelineConfig struct {
	StageTimeout  time.Duration `mapstructure:"stage_timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// SchedulerConfig holds batch scheduler configuration.
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Cron is a standard 5-field cron expression for pipeline batch discovery.
	Cron string `mapstructure:"cron"`
	// BatchLimit caps how many selected items one scheduled batch picks up.
	BatchLimit int `mapstructure:"batch_limit"`
}

// StatsConfig holds statistics collector configuration.
type StatsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// ProviderConfig holds connection settings for one external stage provider.
type ProviderConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"` // script provider only
	Voice    string        `mapstructure:"voice"` // speech provider only
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ProvidersConfig holds configuration for all external stage providers.
type ProvidersConfig struct {
	Script ProviderConfig `mapstructure:"script"`
	Speech ProviderConfig `mapstructure:"speech"`
	Render ProviderConfig `mapstructure:"render"`
	Merge  ProviderConfig `mapstructure:"merge"`
	Upload ProviderConfig `mapstructure:"upload"`
	Stats  ProviderConfig `mapstructure:"stats"`
	News   ProviderConfig `mapstructure:"news"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration and are
// prefixed with CLIPFORGE_, using underscores for nesting.
// Example: CLIPFORGE_SERVER_PORT=8080.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/clipforge")
		v.AddConfigPath("$HOME/.clipforge")
	}

	v.SetEnvPrefix("CLIPFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "clipforge.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Pipeline defaults: no automatic in-run retry, failures surface as FAILED
	v.SetDefault("pipeline.stage_timeout", defaultStageTimeout)
	v.SetDefault("pipeline.retry_attempts", 0)
	v.SetDefault("pipeline.retry_delay", defaultStageRetryDelay)

	// Scheduler defaults
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.cron", "0 7 * * *") // daily at 7 AM
	v.SetDefault("scheduler.batch_limit", defaultBatchLimit)

	// Stats collector defaults
	v.SetDefault("stats.enabled", true)
	v.SetDefault("stats.poll_interval", defaultStatsInterval)

	// Provider defaults
	for _, p := range []string{"script", "speech", "render", "merge", "upload", "stats", "news"} {
		v.SetDefault("providers."+p+".timeout", defaultProviderTimeout)
	}
	v.SetDefault("providers.script.model", "gpt-4o-mini")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}

	if c.Pipeline.StageTimeout <= 0 {
		return fmt.Errorf("pipeline stage_timeout must be positive")
	}
	if c.Pipeline.RetryAttempts < 0 {
		return fmt.Errorf("pipeline retry_attempts must not be negative")
	}

	if c.Scheduler.Enabled && c.Scheduler.Cron == "" {
		return fmt.Errorf("scheduler cron is required when the scheduler is enabled")
	}
	if c.Scheduler.BatchLimit < 1 {
		return fmt.Errorf("scheduler batch_limit must be at least 1")
	}

	if c.Stats.Enabled && c.Stats.PollInterval <= 0 {
		return fmt.Errorf("stats poll_interval must be positive")
	}

	return nil
}
