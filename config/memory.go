package config

// Defaults mirror the sizing the monitoring platform historically ran with.
const (
	DefaultMaxMemoryBytes = 100 * 1024 * 1024
	DefaultMaxItems       = 10_000
)

type MemoryCfg struct {
	// MaxBytes caps the summed serialized size of entries resident in the
	// memory tier. Inserts that would exceed it trigger eviction first.
	MaxBytes int64 `yaml:"max_bytes"`

	// MaxItems is a hard cap on the number of memory-resident entries,
	// enforced alongside MaxBytes.
	MaxItems int64 `yaml:"max_items"`
}
