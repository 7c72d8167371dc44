package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func env(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":5000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.History.Backend != HistoryFile {
		t.Errorf("History.Backend = %q", cfg.History.Backend)
	}
	if cfg.Provider.MaxRetries != 0 {
		t.Errorf("retries should be opt-in, got %d", cfg.Provider.MaxRetries)
	}
	if cfg.History.MaxClients != 1024 {
		t.Errorf("History.MaxClients = %d", cfg.History.MaxClients)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polyglot.yaml")
	content := `
server:
  addr: ":8080"
  cors_origins: ["http://localhost:3000"]
provider:
  model: gemini-1.5-flash
  timeout: 15s
  max_retries: 2
cache:
  backend: redis
  ttl: 10m
  redis_url: redis://localhost:6379/0
history:
  backend: sqlite
  path: /tmp/history.db
log:
  production: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" || len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Provider.Model != "gemini-1.5-flash" || cfg.Provider.Timeout != 15*time.Second || cfg.Provider.MaxRetries != 2 {
		t.Errorf("Provider = %+v", cfg.Provider)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.History.Backend != HistorySQLite || cfg.History.Path != "/tmp/history.db" {
		t.Errorf("History = %+v", cfg.History)
	}
	if !cfg.Log.Production || cfg.Log.Level != "info" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	// Unset values keep their defaults.
	if cfg.Provider.Detector != DetectorProvider {
		t.Errorf("Detector = %q", cfg.Provider.Detector)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Error("empty path should return defaults")
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(path, []byte("server: [unclosed"), 0o600)
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"POLYGLOT_ADDR":            ":9000",
		"OPENAI_API_KEY":           "openai-key",
		"POLYGLOT_MODEL":           "gpt-4o-mini",
		"POLYGLOT_BASE_URL":        "https://api.openai.com/v1",
		"POLYGLOT_CACHE":           "none",
		"POLYGLOT_REDIS_URL":       "redis://cache:6379",
		"POLYGLOT_HISTORY_BACKEND": "redis",
		"POLYGLOT_DETECTOR":        "local",
		"POLYGLOT_LOG_PRODUCTION":  "true",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Provider.APIKey != "openai-key" || cfg.Provider.Model != "gpt-4o-mini" {
		t.Errorf("Provider = %+v", cfg.Provider)
	}
	if cfg.Cache.Backend != "none" || cfg.History.Backend != HistoryRedis {
		t.Errorf("backends = %q, %q", cfg.Cache.Backend, cfg.History.Backend)
	}
	if cfg.History.RedisURL != "redis://cache:6379" {
		t.Errorf("History.RedisURL = %q", cfg.History.RedisURL)
	}
	if cfg.Provider.Detector != DetectorLocal || !cfg.Log.Production {
		t.Errorf("Detector = %q, Production = %v", cfg.Provider.Detector, cfg.Log.Production)
	}
}

func TestApplyEnv_GeminiKeyWins(t *testing.T) {
	cfg := Default()
	_ = cfg.ApplyEnv(env(map[string]string{
		"GEMINI_API_KEY": "gemini-key",
		"OPENAI_API_KEY": "openai-key",
	}))
	if cfg.Provider.APIKey != "gemini-key" {
		t.Errorf("APIKey = %q, want gemini-key", cfg.Provider.APIKey)
	}
}

func TestApplyEnv_InvalidBool(t *testing.T) {
	cfg := Default()
	if err := cfg.ApplyEnv(env(map[string]string{"POLYGLOT_LOG_PRODUCTION": "maybe"})); err == nil {
		t.Error("expected error for invalid bool")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }, "unknown backend"},
		{"redis cache without url", func(c *Config) { c.Cache.Backend = "redis" }, "requires redis_url"},
		{"unknown history", func(c *Config) { c.History.Backend = "s3" }, "unknown backend"},
		{"file history without path", func(c *Config) { c.History.Path = "" }, "requires path"},
		{"redis history without url", func(c *Config) { c.History.Backend = HistoryRedis }, "requires redis_url"},
		{"unknown detector", func(c *Config) { c.Provider.Detector = "oracle" }, "unknown detector"},
		{"negative retries", func(c *Config) { c.Provider.MaxRetries = -1 }, "max_retries"},
		{"negative max clients", func(c *Config) { c.History.MaxClients = -1 }, "max_clients"},
		{"memory history", func(c *Config) { c.History.Backend = HistoryMemory; c.History.Path = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
