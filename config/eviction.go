package config

// Strategy selects the victim ordering used when an insert needs space.
type Strategy string

const (
	// StrategyLRU evicts the least recently accessed entry first.
	StrategyLRU Strategy = "lru"

	// StrategyLFU evicts the least frequently accessed entry first,
	// breaking ties by last access time.
	StrategyLFU Strategy = "lfu"

	// StrategyFIFO evicts the oldest inserted entry first, regardless of
	// access pattern.
	StrategyFIFO Strategy = "fifo"
)

type EvictionCfg struct {
	// Strategy is the default victim-selection strategy. Individual Set
	// calls may override it per operation.
	Strategy Strategy `yaml:"strategy"`
}
