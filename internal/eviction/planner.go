// Package eviction orders memory-resident entries into victim lists when an
// insert would exceed the memory budget.
package eviction

import (
	"sort"

	"github.com/farmtech/go-silo-cache/config"
	"github.com/farmtech/go-silo-cache/internal/key"
)

// Candidate is the per-entry bookkeeping the planner ranks victims by.
type Candidate struct {
	Key         key.Key
	Size        int64
	CreatedAt   int64
	AccessedAt  int64
	AccessCount int64
}

// Plan sorts candidates by the given strategy and returns the shortest
// prefix freeing at least needBytes and needSlots. It returns ok=false when
// even evicting every candidate would not satisfy the request.
//
// Orderings:
//   - lru:  ascending last-access time
//   - lfu:  ascending access count, ties by last-access time
//   - fifo: ascending insertion time (strictly, not access time)
func Plan(strategy config.Strategy, candidates []Candidate, needBytes, needSlots int64) (victims []Candidate, ok bool) {
	if needBytes <= 0 && needSlots <= 0 {
		return nil, true
	}

	sort.Slice(candidates, less(strategy, candidates))

	var freedBytes, freedSlots int64
	for _, c := range candidates {
		if freedBytes >= needBytes && freedSlots >= needSlots {
			break
		}
		victims = append(victims, c)
		freedBytes += c.Size
		freedSlots++
	}

	return victims, freedBytes >= needBytes && freedSlots >= needSlots
}

func less(strategy config.Strategy, c []Candidate) func(i, j int) bool {
	switch strategy {
	case config.StrategyLFU:
		return func(i, j int) bool {
			if c[i].AccessCount != c[j].AccessCount {
				return c[i].AccessCount < c[j].AccessCount
			}
			return c[i].AccessedAt < c[j].AccessedAt
		}
	case config.StrategyFIFO:
		return func(i, j int) bool { return c[i].CreatedAt < c[j].CreatedAt }
	default: // lru
		return func(i, j int) bool { return c[i].AccessedAt < c[j].AccessedAt }
	}
}
