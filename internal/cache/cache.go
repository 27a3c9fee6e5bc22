// Package cache provides a revalidate-on-stale read cache for expensive
// aggregate reads that are safe to serve stale to anonymous consumers, such
// as scenario catalogs per language. Reads keyed by an authenticated user
// must bypass this cache entirely.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Status reports how a GetWithRevalidation call was served.
type Status string

const (
	StatusHit   Status = "HIT"
	StatusMiss  Status = "MISS"
	StatusStale Status = "STALE"
)

// Entry is a cached value with the instant it was computed.
type Entry struct {
	Data     []byte    `json:"data"`
	StoredAt time.Time `json:"storedAt"`
}

// Store holds cache entries. Get returns nil without error on a miss.
// maxAge bounds how long the backend needs to retain the entry (TTL plus
// the stale window).
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry Entry, maxAge time.Duration) error
}

// Options controls one cached read.
type Options struct {
	// TTL is how long a value is fresh.
	TTL time.Duration
	// StaleWhileRevalidate extends TTL: within the window the stale value
	// is returned immediately while a background recompute refreshes it.
	StaleWhileRevalidate time.Duration
	// OnStatus, when set, receives the HIT/MISS/STALE outcome.
	OnStatus func(Status)
}

// Cache coordinates reads over a Store. It deduplicates background
// revalidations per key; a failed revalidation leaves the previous value in
// place and is only logged.
type Cache struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a cache over the given store. A nil logger falls back to
// slog.Default().
func New(store Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:    store,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

// GetWithRevalidation returns the cached value for key, computing it when
// missing or fully expired. Within TTL the value is served as HIT; past TTL
// but within the stale window it is served as STALE and recomputed in the
// background without blocking the caller.
func GetWithRevalidation[T any](ctx context.Context, c *Cache, key string, compute func(context.Context) (T, error), opts Options) (T, error) {
	var zero T

	entry, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed, computing directly", "key", key, "error", err)
		entry = nil
	}

	if entry != nil {
		age := c.now().Sub(entry.StoredAt)
		switch {
		case age <= opts.TTL:
			value, err := decode[T](entry.Data)
			if err == nil {
				report(opts, StatusHit)
				return value, nil
			}
			c.logger.Warn("cache entry undecodable, recomputing", "key", key, "error", err)

		case age <= opts.TTL+opts.StaleWhileRevalidate:
			value, err := decode[T](entry.Data)
			if err == nil {
				report(opts, StatusStale)
				c.revalidate(key, func(ctx context.Context) (any, error) { return compute(ctx) }, opts)
				return value, nil
			}
			c.logger.Warn("cache entry undecodable, recomputing", "key", key, "error", err)
		}
	}

	report(opts, StatusMiss)
	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}
	c.put(ctx, key, value, opts)
	return value, nil
}

// revalidate recomputes a key in the background, at most once concurrently
// per key. Fire and forget: errors never reach any caller.
func (c *Cache) revalidate(key string, compute func(context.Context) (any, error), opts Options) {
	c.mu.Lock()
	if _, busy := c.inflight[key]; busy {
		c.mu.Unlock()
		return
	}
	c.inflight[key] = struct{}{}
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
		}()

		ctx := context.Background()
		value, err := compute(ctx)
		if err != nil {
			c.logger.Warn("cache revalidation failed, keeping stale value", "key", key, "error", err)
			return
		}
		c.put(ctx, key, value, opts)
	}()
}

func (c *Cache) put(ctx context.Context, key string, value any, opts Options) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	entry := Entry{Data: data, StoredAt: c.now()}
	if err := c.store.Set(ctx, key, entry, opts.TTL+opts.StaleWhileRevalidate); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func decode[T any](data []byte) (T, error) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("decode cache entry: %w", err)
	}
	return value, nil
}

func report(opts Options, status Status) {
	if opts.OnStatus != nil {
		opts.OnStatus(status)
	}
}
