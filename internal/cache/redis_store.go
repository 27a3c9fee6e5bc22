package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares cache entries across replicas through Redis. Entries are
// JSON envelopes carrying the computed value and its storage instant, so the
// staleness decision stays with the Cache, not the backend.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis at url and namespaces all keys with
// prefix.
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

// Close shuts down the Redis client.
func (s *RedisStore) Close() error { return s.client.Close() }

// Get returns the entry for key, or nil when absent or undecodable.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Treat a corrupt envelope as a miss; it will be recomputed.
		return nil, nil
	}
	return &entry, nil
}

// Set stores an entry with Redis-side expiry at maxAge.
func (s *RedisStore) Set(ctx context.Context, key string, entry Entry, maxAge time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.client.Set(ctx, s.key(key), raw, maxAge).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

var _ Store = (*RedisStore)(nil)
