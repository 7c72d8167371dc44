package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ZaguanLabs/polyglot"
	"github.com/ZaguanLabs/polyglot/cache"
	"github.com/ZaguanLabs/polyglot/config"
	"github.com/ZaguanLabs/polyglot/history"
	"github.com/ZaguanLabs/polyglot/logging"
	"github.com/ZaguanLabs/polyglot/metrics"
	"github.com/ZaguanLabs/polyglot/provider"
)

// newProvider builds the AI backend. Tests replace it with a mock.
var newProvider = func(cfg config.ProviderConfig) (polyglot.Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key required (--api-key, GEMINI_API_KEY or OPENAI_API_KEY env)")
	}
	return provider.NewChatProvider(provider.ChatConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}), nil
}

// now stamps history records.
var now = time.Now

// commonFlags are accepted by every command.
type commonFlags struct {
	configPath     *string
	apiKey         *string
	model          *string
	historyBackend *string
	historyPath    *string
	verbose        *bool
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		configPath:     fs.String("config", "", "YAML config file (default: POLYGLOT_CONFIG env)"),
		apiKey:         fs.String("api-key", "", "API key (default: GEMINI_API_KEY or OPENAI_API_KEY env)"),
		model:          fs.String("model", "", "Model to use (default: "+provider.DefaultModel+")"),
		historyBackend: fs.String("history-backend", "", "History backend: memory, file, redis or sqlite"),
		historyPath:    fs.String("history-path", "", "History directory (file) or database file (sqlite)"),
		verbose:        fs.Bool("verbose", false, "Log debug output to stderr"),
	}
}

// load resolves the configuration: defaults, then the YAML file, then the
// environment, then flags.
func (f *commonFlags) load() (*config.Config, error) {
	path := *f.configPath
	if path == "" {
		path = os.Getenv("POLYGLOT_CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if *f.apiKey != "" {
		cfg.Provider.APIKey = *f.apiKey
	}
	if *f.model != "" {
		cfg.Provider.Model = *f.model
	}
	if *f.historyBackend != "" {
		cfg.History.Backend = *f.historyBackend
	}
	if *f.historyPath != "" {
		cfg.History.Path = *f.historyPath
	}
	if *f.verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger. Levels below minLevel are raised to it
// unless debug output was requested.
func newLogger(cfg *config.Config, out io.Writer, minLevel zapcore.Level) (*zap.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if level < minLevel && cfg.Log.Level != "debug" {
		level = minLevel
	}
	return logging.New(logging.Options{
		Production: cfg.Log.Production,
		Level:      level,
		Output:     out,
	}), nil
}

// newTranslator wires the provider, retry policy, detector and cache.
func newTranslator(cfg *config.Config, logger *zap.Logger, usage *polyglot.UsageCounter, m *metrics.Metrics) (*polyglot.Translator, error) {
	p, err := newProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	if cfg.Provider.MaxRetries > 0 {
		retry := polyglot.DefaultRetryConfig()
		retry.MaxRetries = cfg.Provider.MaxRetries
		p = polyglot.NewRetryableProvider(p, retry)
	}

	c, err := cache.New(cache.Config{
		Backend:  cfg.Cache.Backend,
		TTL:      cfg.Cache.TTL,
		RedisURL: cfg.Cache.RedisURL,
	})
	if err != nil {
		return nil, err
	}

	opts := []polyglot.TranslatorOption{
		polyglot.WithLogger(logger),
		polyglot.WithMetrics(m),
		polyglot.WithClock(now),
	}
	if c != nil {
		opts = append(opts, polyglot.WithCache(c))
	}
	if usage != nil {
		opts = append(opts, polyglot.WithUsageCounter(usage))
	}
	if cfg.Provider.Detector == config.DetectorLocal {
		opts = append(opts, polyglot.WithDetector(provider.NewLocalDetector()))
	}
	return polyglot.NewTranslator(p, opts...), nil
}

// newBlobStore opens the configured history backend. The returned
// function releases it.
func newBlobStore(ctx context.Context, cfg config.HistoryConfig) (history.BlobStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.HistoryMemory:
		return history.NewMemoryBlobStore(), noop, nil
	case config.HistoryFile:
		s, err := history.NewFileBlobStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.HistoryRedis:
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		s, err := history.NewRedisBlobStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.HistorySQLite:
		s, err := history.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

// openLocalHistory opens the single-user history used by the CLI.
func openLocalHistory(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*history.Store, func() error, error) {
	blobs, closeFn, err := newBlobStore(ctx, cfg.History)
	if err != nil {
		return nil, nil, err
	}
	s, err := history.Open(ctx, blobs, history.WithLogger(logger))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return s, closeFn, nil
}
