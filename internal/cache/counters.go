package cache

import "sync/atomic"

type atomicCounter = atomic.Int64

type counters struct {
	hits      atomic.Int64 // gets/exists served by a live entry
	misses    atomic.Int64 // gets/exists that found nothing usable
	sets      atomic.Int64 // successful set operations
	deletes   atomic.Int64 // explicit and lazy-expiry removals
	evictions atomic.Int64 // removals under memory pressure or by the sweeper
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() (hits, misses, sets, deletes, evictions int64) {
	hits = c.hits.Load()
	misses = c.misses.Load()
	sets = c.sets.Load()
	deletes = c.deletes.Load()
	evictions = c.evictions.Load()
	return
}
