// Package silocache is an embedded two-tier cache: a budgeted memory tier
// serving hits without deserialization, backed by a durable store that
// survives restarts. Entries carry TTLs, a category and tags for bulk
// invalidation; eviction under memory pressure is strategy-driven (LRU, LFU
// or FIFO). A background sweeper removes expired entries from both tiers.
package silocache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/benbjohnson/clock"

	"github.com/farmtech/go-silo-cache/codec"
	"github.com/farmtech/go-silo-cache/config"
	"github.com/farmtech/go-silo-cache/internal/cache"
	"github.com/farmtech/go-silo-cache/internal/store"
	"github.com/farmtech/go-silo-cache/internal/sweeper"
	"github.com/farmtech/go-silo-cache/internal/telemetry"
)

// Stats is the read-only snapshot returned by Cache.Stats.
type Stats = cache.Stats

// Cache is the public facade. Construct one per store at startup, hand it to
// consumers by reference, and Close it at shutdown; there is no package-level
// singleton.
type Cache[V any] struct {
	manager   *cache.Manager[V]
	sweeper   sweeper.Sweeper
	telemetry telemetry.Logger
	cls       context.CancelFunc
}

// New builds a cache using JSON value serialization.
func New[V any](ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Cache[V], error) {
	return NewWithCodec[V](ctx, cfg, logger, codec.NewJSON[V]())
}

// NewWithCodec builds a cache with a caller-supplied value codec. It opens
// (or creates) the durable store, prunes records that expired while the
// process was down, rebuilds the tag index and starts the background
// sweeper and telemetry workers.
func NewWithCodec[V any](ctx context.Context, cfg *config.Config, logger *slog.Logger, c codec.Codec[V]) (*Cache[V], error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.AdjustConfig()
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	clk := clock.New()

	var st *store.Store
	if cfg.Store.Enabled() {
		var err error
		if st, err = store.Open(cfg.Store); err != nil {
			cancel()
			return nil, err
		}
	}

	manager, err := cache.New[V](cfg, logger, c, clk, st)
	if err != nil {
		cancel()
		if st != nil {
			_ = st.Close()
		}
		return nil, err
	}

	sweep := sweeper.New(ctx, cfg.Lifetime, logger, clk, manager)
	return &Cache[V]{
		manager:   manager,
		sweeper:   sweep,
		telemetry: telemetry.New(ctx, cfg, logger, manager, sweep),
		cls:       cancel,
	}, nil
}

// Set stores value under key. Returns false when the key is empty, the value
// cannot be serialized, or eviction cannot free enough space.
func (c *Cache[V]) Set(key string, value V, opts ...SetOption) bool {
	return c.manager.Set(key, value, buildSetOptions(opts))
}

// Get returns the live, unexpired value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.manager.Get(key)
}

// Delete removes key from every tier and reports whether it existed.
func (c *Cache[V]) Delete(key string) bool {
	return c.manager.Delete(key)
}

// Exists reports whether key resolves to a live entry. It counts toward
// hit/miss stats exactly like Get; use Stats for a side-effect-free view.
func (c *Cache[V]) Exists(key string) bool {
	return c.manager.Exists(key)
}

// Clear removes every entry and returns the count removed.
func (c *Cache[V]) Clear() int {
	return c.manager.Clear()
}

// ClearCategory removes every entry stored with the category.
func (c *Cache[V]) ClearCategory(category string) int {
	return c.manager.ClearCategory(category)
}

// InvalidateByTags removes every entry carrying any of the tags.
func (c *Cache[V]) InvalidateByTags(tags ...string) int {
	return c.manager.InvalidateByTags(tags)
}

// GetMany looks up each key; absent keys are left out of the result.
func (c *Cache[V]) GetMany(keys []string) map[string]V {
	return c.manager.GetMany(keys)
}

// SetMany stores each pair with the same options and returns the number of
// successful sets. No atomicity across the batch.
func (c *Cache[V]) SetMany(values map[string]V, opts ...SetOption) int {
	return c.manager.SetMany(values, buildSetOptions(opts))
}

// Stats returns a consistent snapshot of counters and memory usage.
func (c *Cache[V]) Stats() Stats {
	return c.manager.Stats()
}

// Close stops and joins the background workers, then releases the store
// handle. The cache must not be used afterwards.
func (c *Cache[V]) Close() error {
	c.cls()
	return errors.Join(
		c.sweeper.Close(),
		c.telemetry.Close(),
		c.manager.Close(),
	)
}
