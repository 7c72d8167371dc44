// Package config loads polyglot's configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// History backends.
const (
	HistoryMemory = "memory"
	HistoryFile   = "file"
	HistoryRedis  = "redis"
	HistorySQLite = "sqlite"
)

// Detector names.
const (
	DetectorProvider = "provider"
	DetectorLocal    = "local"
)

// Config is the complete polyglot configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Provider ProviderConfig `yaml:"provider"`
	Cache    CacheConfig    `yaml:"cache"`
	History  HistoryConfig  `yaml:"history"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	CORSOrigins  []string      `yaml:"cors_origins"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ProviderConfig configures the translation backend.
type ProviderConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	Detector   string        `yaml:"detector"`
}

// CacheConfig configures the translation cache.
type CacheConfig struct {
	Backend  string        `yaml:"backend"`
	TTL      time.Duration `yaml:"ttl"`
	RedisURL string        `yaml:"redis_url"`
}

// HistoryConfig configures where translation histories are persisted.
// Path is a directory for the file backend and a database file for sqlite.
// MaxClients bounds the per-client histories the server keeps loaded.
type HistoryConfig struct {
	Backend    string `yaml:"backend"`
	Path       string `yaml:"path"`
	RedisURL   string `yaml:"redis_url"`
	MaxClients int    `yaml:"max_clients"`
}

// LogConfig configures logging.
type LogConfig struct {
	Production bool   `yaml:"production"`
	Level      string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":5000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 90 * time.Second,
		},
		Provider: ProviderConfig{
			Timeout:  60 * time.Second,
			Detector: DetectorProvider,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     time.Hour,
		},
		History: HistoryConfig{
			Backend:    HistoryFile,
			Path:       DefaultHistoryDir(),
			MaxClients: 1024,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultHistoryDir returns ~/.polyglot, or .polyglot when the home
// directory is unknown.
func DefaultHistoryDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".polyglot"
	}
	return filepath.Join(home, ".polyglot")
}

// Load reads the YAML file at path over the defaults. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 - config path is user-provided
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with values from the environment. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := strings.TrimSpace(getenv(key)); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.Server.Addr, "POLYGLOT_ADDR")
	setString(&c.Provider.APIKey, "GEMINI_API_KEY", "OPENAI_API_KEY")
	setString(&c.Provider.BaseURL, "POLYGLOT_BASE_URL")
	setString(&c.Provider.Model, "POLYGLOT_MODEL")
	setString(&c.Provider.Detector, "POLYGLOT_DETECTOR")
	setString(&c.Cache.Backend, "POLYGLOT_CACHE")
	setString(&c.Cache.RedisURL, "POLYGLOT_REDIS_URL")
	setString(&c.History.Backend, "POLYGLOT_HISTORY_BACKEND")
	setString(&c.History.Path, "POLYGLOT_HISTORY_PATH")
	setString(&c.History.RedisURL, "POLYGLOT_REDIS_URL")
	setString(&c.Log.Level, "POLYGLOT_LOG_LEVEL")

	if v := getenv("POLYGLOT_LOG_PRODUCTION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("POLYGLOT_LOG_PRODUCTION: %w", err)
		}
		c.Log.Production = b
	}
	return nil
}

// Validate checks that backend names are known and required values are set.
func (c *Config) Validate() error {
	var errs []error

	switch c.Cache.Backend {
	case "", "none", "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			errs = append(errs, errors.New("cache: redis backend requires redis_url"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache: unknown backend %q", c.Cache.Backend))
	}

	switch c.History.Backend {
	case HistoryMemory:
	case HistoryFile, HistorySQLite:
		if c.History.Path == "" {
			errs = append(errs, fmt.Errorf("history: %s backend requires path", c.History.Backend))
		}
	case HistoryRedis:
		if c.History.RedisURL == "" {
			errs = append(errs, errors.New("history: redis backend requires redis_url"))
		}
	default:
		errs = append(errs, fmt.Errorf("history: unknown backend %q", c.History.Backend))
	}

	switch c.Provider.Detector {
	case DetectorProvider, DetectorLocal:
	default:
		errs = append(errs, fmt.Errorf("provider: unknown detector %q", c.Provider.Detector))
	}

	if c.Provider.MaxRetries < 0 {
		errs = append(errs, errors.New("provider: max_retries must not be negative"))
	}
	if c.History.MaxClients < 0 {
		errs = append(errs, errors.New("history: max_clients must not be negative"))
	}

	return errors.Join(errs...)
}
