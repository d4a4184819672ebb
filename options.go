package silocache

import (
	"time"

	"github.com/farmtech/go-silo-cache/config"
	"github.com/farmtech/go-silo-cache/internal/cache"
)

// Strategy re-exports, so callers only need this package and config for YAML.
const (
	StrategyLRU  = config.StrategyLRU
	StrategyLFU  = config.StrategyLFU
	StrategyFIFO = config.StrategyFIFO
)

// SetOption customizes a single Set (or SetMany) call.
type SetOption func(*cache.SetOptions)

// WithTTL overrides the configured default lifetime for this entry. A Set on
// an existing key always restarts the clock; TTLs are never extended in place.
func WithTTL(ttl time.Duration) SetOption {
	return func(o *cache.SetOptions) { o.TTL = ttl }
}

// WithCategory labels the entry for bulk ClearCategory calls.
func WithCategory(category string) SetOption {
	return func(o *cache.SetOptions) { o.Category = category }
}

// WithTags labels the entry for bulk InvalidateByTags calls.
func WithTags(tags ...string) SetOption {
	return func(o *cache.SetOptions) { o.Tags = tags }
}

// WithStrategy selects the victim ordering should this Set need to evict.
func WithStrategy(strategy config.Strategy) SetOption {
	return func(o *cache.SetOptions) { o.Strategy = strategy }
}

func buildSetOptions(opts []SetOption) cache.SetOptions {
	var o cache.SetOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
