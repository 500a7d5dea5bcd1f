package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig
	Log     LogConfig
	Metrics MetricsConfig
	Catalog CatalogConfig
	Bus     BusConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Output string // stdout or stderr
	File   string // optional file that duplicates the output
}

// MetricsConfig holds the optional Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string
}

// CatalogConfig points at an optional product seed file. Empty means the built-in sample catalog.
type CatalogConfig struct {
	SeedFile string
}

// BusConfig sizes the in-memory event bus.
type BusConfig struct {
	Buffer      int
	Concurrency int
}

// Load loads configuration from a YAML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with POS_ prefix (e.g., POS_LOG_LEVEL)
// 2. config.yaml in the first matching search path
// 3. Built-in defaults
func Load(searchPaths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
	}
	for _, p := range searchPaths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Output: v.GetString("log.output"),
			File:   v.GetString("log.file"),
		},
		Metrics: MetricsConfig{
			Addr: v.GetString("metrics.addr"),
		},
		Catalog: CatalogConfig{
			SeedFile: v.GetString("catalog.seed_file"),
		},
		Bus: BusConfig{
			Buffer:      v.GetInt("bus.buffer"),
			Concurrency: v.GetInt("bus.concurrency"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "minishop-pos"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Bus.Buffer == 0 {
		cfg.Bus.Buffer = 1024
	}
	if cfg.Bus.Concurrency == 0 {
		cfg.Bus.Concurrency = 8
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be debug, info, warn or error", c.Log.Level)
	}
	switch c.Log.Output {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("invalid log output %q: must be stdout or stderr", c.Log.Output)
	}
	if c.Bus.Buffer < 0 {
		return fmt.Errorf("bus buffer must not be negative, got %d", c.Bus.Buffer)
	}
	if c.Bus.Concurrency < 0 {
		return fmt.Errorf("bus concurrency must not be negative, got %d", c.Bus.Concurrency)
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
