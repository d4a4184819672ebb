package sweeper

import "sync/atomic"

type sweeperCounters struct {
	scans    atomic.Int64 // completed scan cycles
	scanHits atomic.Int64 // scans that found at least one expired entry
	removed  atomic.Int64 // entries actually removed
}

func newSweeperCounters() *sweeperCounters {
	return &sweeperCounters{}
}

func (c *sweeperCounters) snapshot() (scans, hits, removed int64) {
	scans = c.scans.Load()
	hits = c.scanHits.Load()
	removed = c.removed.Load()
	return
}
