package cache

// Stats is a point-in-time snapshot of cache activity and memory-tier usage.
type Stats struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64

	// HitRate is Hits / (Hits + Misses), 0 when no lookups have happened.
	HitRate float64

	ItemsInMemory    int64
	MemoryUsageBytes int64
}
