package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountersSnapshot(t *testing.T) {
	c := newCounters()

	c.hits.Add(3)
	c.misses.Add(2)
	c.sets.Add(5)
	c.deletes.Add(1)
	c.evictions.Add(4)

	hits, misses, sets, deletes, evictions := c.snapshot()
	require.Equal(t, int64(3), hits)
	require.Equal(t, int64(2), misses)
	require.Equal(t, int64(5), sets)
	require.Equal(t, int64(1), deletes)
	require.Equal(t, int64(4), evictions)
}

func TestCountersZeroValue(t *testing.T) {
	c := newCounters()

	hits, misses, sets, deletes, evictions := c.snapshot()
	require.Zero(t, hits)
	require.Zero(t, misses)
	require.Zero(t, sets)
	require.Zero(t, deletes)
	require.Zero(t, evictions)
}
