package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Namespace is a logical partition of the cache with its own default
// TTL and in-memory capacity.
type Namespace struct {
	Name     string
	TTL      time.Duration
	Capacity int
}

// Namespaces used by the search pipeline.
var (
	// NamespaceSearch holds enriched per-provider search results.
	NamespaceSearch = Namespace{Name: "search", TTL: time.Hour, Capacity: 200}

	// NamespacePolicy holds check-in policy text per detail URL.
	NamespacePolicy = Namespace{Name: "policy", TTL: 24 * time.Hour, Capacity: 1000}

	// NamespaceDetail holds photos and structured facts per detail URL.
	NamespaceDetail = Namespace{Name: "detail", TTL: 24 * time.Hour, Capacity: 1000}

	// NamespaceAPI holds classified responses served by the search service.
	NamespaceAPI = Namespace{Name: "api", TTL: 5 * time.Minute, Capacity: 200}
)

// Cache is the two-tier cache.
type Cache struct {
	durable Store
	logger  *slog.Logger

	mu     sync.Mutex
	memory map[string]*LRU
}

// Option configures a Cache.
type Option func(*Cache)

// WithDurable sets the durable tier. nil keeps the cache memory-only.
func WithDurable(s Store) Option {
	return func(c *Cache) {
		c.durable = s
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New creates a Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		logger: slog.Default(),
		memory: make(map[string]*LRU),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Durable reports whether a durable tier is configured.
func (c *Cache) Durable() bool {
	return c.durable != nil
}

// Get returns the cached value for key in ns.
func (c *Cache) Get(ctx context.Context, ns Namespace, key string) (string, bool) {
	if c.durable != nil {
		value, ok, err := c.durable.Get(ctx, durableKey(ns, key))
		if err == nil {
			if ok {
				c.logger.Debug("cache hit", "namespace", ns.Name, "tier", "durable", "key", key)
			}
			return value, ok
		}
		c.logger.Warn("durable cache read failed, using memory", "namespace", ns.Name, "error", err)
	}

	value, ok := c.lru(ns).Get(key)
	if ok {
		c.logger.Debug("cache hit", "namespace", ns.Name, "tier", "memory", "key", key)
	}
	return value, ok
}

// Set stores value under key in ns. A non-positive ttl uses the
// namespace default.
func (c *Cache) Set(ctx context.Context, ns Namespace, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = ns.TTL
	}
	c.lru(ns).Set(key, value, ttl)

	if c.durable != nil {
		if err := c.durable.Set(ctx, durableKey(ns, key), value, ttl); err != nil {
			c.logger.Warn("durable cache write failed", "namespace", ns.Name, "error", err)
		}
	}
}

// Close closes the durable tier.
func (c *Cache) Close() error {
	if c.durable == nil {
		return nil
	}
	return c.durable.Close()
}

func (c *Cache) lru(ns Namespace) *LRU {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.memory[ns.Name]
	if !ok {
		l = NewLRU(ns.Capacity)
		c.memory[ns.Name] = l
	}
	return l
}

func durableKey(ns Namespace, key string) string {
	return "hotellens:" + ns.Name + ":" + key
}

// GetJSON decodes a cached JSON value. A value that no longer decodes is
// treated as a miss.
func GetJSON[T any](ctx context.Context, c *Cache, ns Namespace, key string) (T, bool) {
	var v T
	raw, ok := c.Get(ctx, ns, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		c.logger.Debug("discarding undecodable cache entry", "namespace", ns.Name, "key", key, "error", err)
		return v, false
	}
	return v, true
}

// SetJSON encodes v as JSON and stores it.
func SetJSON[T any](ctx context.Context, c *Cache, ns Namespace, key string, v T, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	c.Set(ctx, ns, key, string(raw), ttl)
	return nil
}
