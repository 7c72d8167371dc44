// Package cache provides translation caching implementations.
package cache

import (
	"fmt"
	"time"
)

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation in the cache.
	Set(key string, value string) error
}

// Backend names accepted by New.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects and configures a cache backend.
type Config struct {
	Backend   string        // "none", "memory" or "redis"
	TTL       time.Duration // 0 = no expiration
	RedisURL  string        // required for the redis backend
	KeyPrefix string        // redis key prefix (default: "polyglot:tx:")
}

// New builds the cache described by cfg. The none backend returns a nil
// cache, which the translator treats as "caching disabled".
func New(cfg Config) (TranslationCache, error) {
	ttlSeconds := int(cfg.TTL / time.Second)

	switch cfg.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendMemory:
		return NewInMemoryCache(ttlSeconds), nil
	case BackendRedis:
		c, err := NewRedisCache(RedisConfig{
			URL:       cfg.RedisURL,
			TTL:       ttlSeconds,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
