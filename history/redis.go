package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is prepended to every key stored in Redis.
const DefaultRedisPrefix = "polyglot:"

// RedisBlobStore keeps blobs as Redis strings without expiry.
type RedisBlobStore struct {
	client *redis.Client
	prefix string
}

// NewRedisBlobStore connects to the Redis server at url.
func NewRedisBlobStore(ctx context.Context, url string) (*RedisBlobStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisBlobStoreFromClient(client, DefaultRedisPrefix), nil
}

// NewRedisBlobStoreFromClient wraps an existing client.
func NewRedisBlobStoreFromClient(client *redis.Client, prefix string) *RedisBlobStore {
	return &RedisBlobStore{client: client, prefix: prefix}
}

// Get returns the blob stored under key.
func (r *RedisBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores data under key.
func (r *RedisBlobStore) Set(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, r.prefix+key, data, 0).Err()
}

// Close closes the underlying client.
func (r *RedisBlobStore) Close() error {
	return r.client.Close()
}

var _ BlobStore = (*RedisBlobStore)(nil)
