package config

// Config groups configuration of all cache subsystems.
// Optional subsystems can be disabled by leaving their section nil.
type Config struct {
	Memory MemoryCfg `yaml:"memory"`

	// Eviction configures victim selection under memory pressure.
	Eviction EvictionCfg `yaml:"eviction"`

	// Lifetime configures TTL handling and the background expiry sweep.
	// If nil, entries never expire and no sweeper runs.
	Lifetime *LifetimeCfg `yaml:"lifetime"`

	// Store configures the durable overflow tier.
	// If nil, the cache runs memory-only and nothing survives a restart.
	Store *StoreCfg `yaml:"store"`

	// Telemetry configures periodic operational stat logs.
	// If nil, no telemetry worker runs.
	Telemetry *TelemetryCfg `yaml:"telemetry"`
}
