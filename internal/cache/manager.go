// Package cache holds the manager: the memory index, tag index and byte
// budget behind the public operation set, with the durable store as the
// write-through overflow tier.
package cache

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/farmtech/go-silo-cache/codec"
	"github.com/farmtech/go-silo-cache/config"
	"github.com/farmtech/go-silo-cache/internal/eviction"
	"github.com/farmtech/go-silo-cache/internal/key"
	"github.com/farmtech/go-silo-cache/internal/store"
)

// SetOptions carries the optional per-entry attributes of a Set call.
type SetOptions struct {
	// TTL overrides the configured default when positive.
	TTL time.Duration

	// Category is a free-text grouping label for bulk clears.
	Category string

	// Tags label the entry for bulk invalidation.
	Tags []string

	// Strategy overrides the configured victim-selection strategy for the
	// eviction this Set may trigger.
	Strategy config.Strategy
}

// Manager owns both tiers. Every mutating operation, including the access
// bookkeeping inside Get, runs under one mutex; the lock is never held
// across a caller-supplied callback.
type Manager[V any] struct {
	mu       sync.Mutex
	cfg      *config.Config
	logger   *slog.Logger
	codec    codec.Codec[V]
	clock    clock.Clock
	store    *store.Store // nil in memory-only mode
	entries  map[key.Key]*entry[V]
	tags     *tagIndex
	usage    int64 // sum of size over memory-resident entries
	counters *counters
}

func New[V any](cfg *config.Config, logger *slog.Logger, c codec.Codec[V], clk clock.Clock, st *store.Store) (*Manager[V], error) {
	m := &Manager[V]{
		cfg:      cfg,
		logger:   logger,
		codec:    c,
		clock:    clk,
		store:    st,
		entries:  make(map[key.Key]*entry[V]),
		tags:     newTagIndex(),
		counters: newCounters(),
	}
	if err := m.rebuild(); err != nil {
		return nil, err
	}
	return m, nil
}

// rebuild prunes expired and corrupt records left over from the previous
// process and reloads the tag index, so the tag invariant holds from the
// first operation after a restart. Values stay on disk until promoted.
func (m *Manager[V]) rebuild() error {
	if m.store == nil {
		return nil
	}
	now := m.now()

	var stale []key.Key
	err := m.store.ForEach(func(k key.Key, rec *store.Record, decodeErr error) bool {
		if decodeErr != nil || rec.Expired(now) {
			stale = append(stale, k)
			return true
		}
		m.tags.add(k, rec.Tags)
		return true
	})
	if err != nil {
		return err
	}

	for _, k := range stale {
		if _, err := m.store.Delete(k); err != nil {
			m.logger.Error("pruning stale record", "key_hash", k.String(), "error", err)
		}
	}
	if len(stale) > 0 {
		m.logger.Info("pruned stale records at startup", "count", len(stale))
	}
	return nil
}

// Set stores the value under key, evicting per the strategy when the insert
// would exceed the memory budget or item cap. It reports false when the key
// is empty, the value cannot be serialized, or space cannot be freed; in
// those cases nothing is mutated. A Set on an existing key replaces the
// entry entirely, with fresh timestamps.
func (m *Manager[V]) Set(cacheKey string, value V, opts SetOptions) bool {
	if cacheKey == "" {
		return false
	}

	payload, err := m.codec.Encode(value)
	if err != nil {
		m.logger.Error("set: serialize value", "key", cacheKey, "error", err)
		return false
	}

	k := key.New(cacheKey)
	size := int64(len(payload))
	now := m.now()

	ttl := opts.TTL.Nanoseconds()
	if ttl <= 0 {
		ttl = m.cfg.DefaultTTLOrZero()
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now + ttl
	}

	strategy := opts.Strategy
	if strategy == "" {
		strategy = m.cfg.Eviction.Strategy
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	old := m.entries[k]
	if !m.ensureSpaceLocked(k, old, size, strategy) {
		return false
	}

	e := &entry[V]{
		key:        cacheKey,
		value:      value,
		size:       size,
		createdAt:  now,
		accessedAt: now,
		ttl:        ttl,
		expiresAt:  expiresAt,
		category:   opts.Category,
		tags:       opts.Tags,
	}

	if m.store != nil {
		rec := &store.Record{
			Hash:       k,
			Key:        cacheKey,
			CreatedAt:  now,
			AccessedAt: now,
			TTL:        ttl,
			ExpiresAt:  expiresAt,
			Category:   opts.Category,
			Tags:       opts.Tags,
			Payload:    payload,
		}
		if err := m.store.Put(rec); err != nil {
			// degrade to memory-only for this entry
			m.logger.Error("set: store write-through", "key_hash", k.String(), "error", err)
		}
	}

	if old != nil {
		m.usage -= old.size
	}
	m.entries[k] = e
	m.usage += size
	m.tags.add(k, opts.Tags)

	m.counters.sets.Add(1)
	return true
}

// Get returns the live value for key. Memory is consulted first; on a miss
// there, an unexpired durable record is deserialized and promoted. Expired
// entries found on the way are deleted as a side effect.
func (m *Manager[V]) Get(cacheKey string) (V, bool) {
	var zero V
	k := key.New(cacheKey)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[k]; ok {
		if e.expired(now) {
			m.removeLocked(k, &m.counters.deletes)
			m.counters.misses.Add(1)
			return zero, false
		}
		e.accessedAt = now
		e.accessCount++
		m.touchStore(k, now, e.accessCount)
		m.counters.hits.Add(1)
		return e.value, true
	}

	if m.store == nil {
		m.counters.misses.Add(1)
		return zero, false
	}

	rec, found, err := m.store.Get(k)
	if err != nil {
		if errors.Is(err, store.ErrCorruptRecord) {
			m.logger.Warn("get: evicting corrupt record", "key_hash", k.String())
			m.removeLocked(k, &m.counters.evictions)
		} else {
			m.logger.Error("get: store read", "key_hash", k.String(), "error", err)
		}
		m.counters.misses.Add(1)
		return zero, false
	}
	if !found {
		m.counters.misses.Add(1)
		return zero, false
	}
	if rec.Expired(now) {
		m.removeLocked(k, &m.counters.deletes)
		m.counters.misses.Add(1)
		return zero, false
	}

	value, err := m.codec.Decode(rec.Payload)
	if err != nil {
		m.logger.Warn("get: evicting undecodable record", "key_hash", k.String(), "error", err)
		m.removeLocked(k, &m.counters.evictions)
		m.counters.misses.Add(1)
		return zero, false
	}

	m.promoteLocked(k, rec, value, now)
	m.touchStore(k, now, rec.AccessCount+1)
	m.counters.hits.Add(1)
	return value, true
}

// promoteLocked pulls a durable record into the memory tier, evicting per
// the default strategy if needed. When space cannot be freed the value is
// still served, just not promoted.
func (m *Manager[V]) promoteLocked(k key.Key, rec *store.Record, value V, now int64) {
	if !m.ensureSpaceLocked(k, nil, rec.Size(), m.cfg.Eviction.Strategy) {
		return
	}
	m.entries[k] = &entry[V]{
		key:         rec.Key,
		value:       value,
		size:        rec.Size(),
		createdAt:   rec.CreatedAt,
		accessedAt:  now,
		accessCount: rec.AccessCount + 1,
		ttl:         rec.TTL,
		expiresAt:   rec.ExpiresAt,
		category:    rec.Category,
		tags:        rec.Tags,
	}
	m.usage += rec.Size()
	m.tags.add(k, rec.Tags)
}

// Delete removes the entry from every tier and reports whether one existed.
// Deleting an absent key is a no-op returning false.
func (m *Manager[V]) Delete(cacheKey string) bool {
	k := key.New(cacheKey)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removeLocked(k, nil) {
		m.counters.deletes.Add(1)
		return true
	}
	return false
}

// Exists reports whether key resolves to a live entry. It shares the Get
// path, so it participates in hit/miss accounting and access bookkeeping.
func (m *Manager[V]) Exists(cacheKey string) bool {
	_, ok := m.Get(cacheKey)
	return ok
}

// GetMany looks up each key with plain Get semantics; absent keys are simply
// left out of the result. No atomicity across the batch.
func (m *Manager[V]) GetMany(keys []string) map[string]V {
	out := make(map[string]V, len(keys))
	for _, k := range keys {
		if v, ok := m.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// SetMany stores each pair with plain Set semantics and returns how many
// succeeded. No atomicity across the batch.
func (m *Manager[V]) SetMany(values map[string]V, opts SetOptions) int {
	var n int
	for k, v := range values {
		if m.Set(k, v, opts) {
			n++
		}
	}
	return n
}

// Clear removes every entry from both tiers and returns the count removed.
func (m *Manager[V]) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	victims := make(map[key.Key]struct{}, len(m.entries))
	for k := range m.entries {
		victims[k] = struct{}{}
	}
	m.collectStoreKeys(victims, func(*store.Record) bool { return true })

	return m.removeAllLocked(victims)
}

// ClearCategory removes every entry whose category matches.
func (m *Manager[V]) ClearCategory(category string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	victims := make(map[key.Key]struct{})
	for k, e := range m.entries {
		if e.category == category {
			victims[k] = struct{}{}
		}
	}
	m.collectStoreKeys(victims, func(rec *store.Record) bool { return rec.Category == category })

	return m.removeAllLocked(victims)
}

// InvalidateByTags removes the union of entries carrying any of the tags and
// returns the count removed.
func (m *Manager[V]) InvalidateByTags(tags []string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	victims := m.tags.keysFor(tags)
	if m.store != nil {
		for _, tag := range tags {
			keys, err := m.store.TaggedKeys(tag)
			if err != nil {
				m.logger.Error("invalidate: tag scan", "tag", tag, "error", err)
				continue
			}
			for _, k := range keys {
				victims[k] = struct{}{}
			}
		}
	}

	return m.removeAllLocked(victims)
}

// Stats snapshots the counters and memory-tier usage under the lock so the
// numbers never tear against a concurrent mutation.
func (m *Manager[V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	hits, misses, sets, deletes, evictions := m.counters.snapshot()
	var hitRate float64
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}
	return Stats{
		Hits:             hits,
		Misses:           misses,
		Sets:             sets,
		Deletes:          deletes,
		Evictions:        evictions,
		HitRate:          hitRate,
		ItemsInMemory:    int64(len(m.entries)),
		MemoryUsageBytes: m.usage,
	}
}

// ExpiredKeys collects up to limit digests past their expiry from both
// tiers, for the sweeper to remove.
func (m *Manager[V]) ExpiredKeys(limit int) []key.Key {
	now := m.now()
	seen := make(map[key.Key]struct{})
	var out []key.Key

	m.mu.Lock()
	for k, e := range m.entries {
		if len(out) >= limit {
			break
		}
		if e.expired(now) {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	m.mu.Unlock()

	if m.store == nil || len(out) >= limit {
		return out
	}

	err := m.store.ForEach(func(k key.Key, rec *store.Record, decodeErr error) bool {
		if _, dup := seen[k]; dup {
			return true
		}
		if decodeErr != nil || rec.Expired(now) {
			out = append(out, k)
		}
		return len(out) < limit
	})
	if err != nil {
		m.logger.Error("sweep: store scan", "error", err)
	}
	return out
}

// RemoveExpired re-checks expiry under the lock and removes the entry from
// every tier, counting it as an eviction. The recheck matters because the
// entry may have been replaced between the sweep scan and this call.
func (m *Manager[V]) RemoveExpired(k key.Key) bool {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[k]; ok {
		if !e.expired(now) {
			return false
		}
		return m.removeLocked(k, &m.counters.evictions)
	}

	if m.store == nil {
		return false
	}
	rec, found, err := m.store.Get(k)
	if err == nil && found && !rec.Expired(now) {
		return false
	}
	if err != nil && !errors.Is(err, store.ErrCorruptRecord) {
		m.logger.Error("sweep: store read", "key_hash", k.String(), "error", err)
		return false
	}
	if !found && err == nil {
		return false
	}
	return m.removeLocked(k, &m.counters.evictions)
}

// Close releases the durable store handle. Callers stop the background
// workers first.
func (m *Manager[V]) Close() error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}

/**
 * Private API, callers hold m.mu.
 */

// ensureSpaceLocked frees enough budget for an insert of the given size,
// treating replaced as already removed and never selecting it as a victim.
// It evicts nothing unless the plan fully satisfies the request.
func (m *Manager[V]) ensureSpaceLocked(incoming key.Key, replaced *entry[V], size int64, strategy config.Strategy) bool {
	effective := m.usage
	count := int64(len(m.entries))
	if replaced != nil {
		effective -= replaced.size
		count--
	}

	needBytes := effective + size - m.cfg.Memory.MaxBytes
	needSlots := count + 1 - m.cfg.Memory.MaxItems
	if needBytes <= 0 && needSlots <= 0 {
		return true
	}

	candidates := make([]eviction.Candidate, 0, len(m.entries))
	for k, e := range m.entries {
		if k == incoming {
			continue
		}
		candidates = append(candidates, eviction.Candidate{
			Key:         k,
			Size:        e.size,
			CreatedAt:   e.createdAt,
			AccessedAt:  e.accessedAt,
			AccessCount: e.accessCount,
		})
	}

	victims, ok := eviction.Plan(strategy, candidates, needBytes, needSlots)
	if !ok {
		return false
	}
	for _, v := range victims {
		m.removeLocked(v.Key, &m.counters.evictions)
	}
	return true
}

// removeLocked deletes the digest from the memory index, the tag index and
// the durable store in one logical operation. counter, when non-nil, is
// incremented once if anything existed.
func (m *Manager[V]) removeLocked(k key.Key, counter *atomicCounter) bool {
	existed := false
	if e, ok := m.entries[k]; ok {
		m.usage -= e.size
		delete(m.entries, k)
		existed = true
	}
	m.tags.removeKey(k)

	if m.store != nil {
		inStore, err := m.store.Delete(k)
		if err != nil {
			m.logger.Error("remove: store delete", "key_hash", k.String(), "error", err)
		}
		existed = existed || inStore
	}

	if existed && counter != nil {
		counter.Add(1)
	}
	return existed
}

func (m *Manager[V]) removeAllLocked(victims map[key.Key]struct{}) int {
	var n int
	for k := range victims {
		if m.removeLocked(k, nil) {
			n++
		}
	}
	return n
}

// collectStoreKeys merges store digests matching the predicate into dst.
func (m *Manager[V]) collectStoreKeys(dst map[key.Key]struct{}, match func(*store.Record) bool) {
	if m.store == nil {
		return
	}
	err := m.store.ForEach(func(k key.Key, rec *store.Record, decodeErr error) bool {
		if decodeErr == nil && match(rec) {
			dst[k] = struct{}{}
		}
		return true
	})
	if err != nil {
		m.logger.Error("clear: store scan", "error", err)
	}
}

// touchStore mirrors hit bookkeeping into the durable record.
func (m *Manager[V]) touchStore(k key.Key, accessedAt, accessCount int64) {
	if m.store == nil {
		return
	}
	if err := m.store.Touch(k, accessedAt, accessCount); err != nil {
		m.logger.Error("get: store touch", "key_hash", k.String(), "error", err)
	}
}

func (m *Manager[V]) now() int64 {
	return m.clock.Now().UnixNano()
}
