package telemetry

import "github.com/farmtech/go-silo-cache/internal/cache"

// Source exposes the cumulative cache stats the telemetry loop samples.
type Source interface {
	Stats() cache.Stats
}

// SweepSource exposes the sweeper's cumulative counters.
type SweepSource interface {
	SweeperMetrics() (scans, hits, removed int64)
}

type sampler struct {
	source  Source
	sweeper SweepSource
}

func newSampler(source Source, sweeper SweepSource) sampler {
	return sampler{source: source, sweeper: sweeper}
}

// snapshot holds cumulative counters (monotonic).
type snapshot struct {
	hits      uint64
	misses    uint64
	sets      uint64
	deletes   uint64
	evictions uint64

	sweepScans   uint64
	sweepHits    uint64
	sweepRemoved uint64
}

func (s sampler) snapshot() snapshot {
	stats := s.source.Stats()
	scans, hits, removed := s.sweeper.SweeperMetrics()

	return snapshot{
		hits:      uint64(max(stats.Hits, 0)),
		misses:    uint64(max(stats.Misses, 0)),
		sets:      uint64(max(stats.Sets, 0)),
		deletes:   uint64(max(stats.Deletes, 0)),
		evictions: uint64(max(stats.Evictions, 0)),

		sweepScans:   uint64(max(scans, 0)),
		sweepHits:    uint64(max(hits, 0)),
		sweepRemoved: uint64(max(removed, 0)),
	}
}

// deltaSnapshot converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaSnapshot(prev, cur snapshot) snapshot {
	return snapshot{
		hits:      delta(prev.hits, cur.hits),
		misses:    delta(prev.misses, cur.misses),
		sets:      delta(prev.sets, cur.sets),
		deletes:   delta(prev.deletes, cur.deletes),
		evictions: delta(prev.evictions, cur.evictions),

		sweepScans:   delta(prev.sweepScans, cur.sweepScans),
		sweepHits:    delta(prev.sweepHits, cur.sweepHits),
		sweepRemoved: delta(prev.sweepRemoved, cur.sweepRemoved),
	}
}

func delta(prev, cur uint64) uint64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
