package cache

// entry is the memory-tier form of a cached value: the live typed value plus
// the bookkeeping that drives expiry checks and eviction planning, kept here
// so hits never need a store round trip.
type entry[V any] struct {
	key         string
	value       V
	size        int64 // serialized byte length, drives budget accounting
	createdAt   int64 // unix nano, immutable
	accessedAt  int64 // unix nano, renewed on every hit
	accessCount int64
	ttl         int64 // nanoseconds, 0 = never expires
	expiresAt   int64 // unix nano, 0 = never expires
	category    string
	tags        []string
}

func (e *entry[V]) expired(nowUnixNano int64) bool {
	return e.expiresAt > 0 && e.expiresAt <= nowUnixNano
}
