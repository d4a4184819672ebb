package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AdjustConfig fills in defaults for fields left at their zero value.
func (cfg *Config) AdjustConfig() {
	if cfg.Memory.MaxBytes <= 0 {
		cfg.Memory.MaxBytes = DefaultMaxMemoryBytes
	}
	if cfg.Memory.MaxItems <= 0 {
		cfg.Memory.MaxItems = DefaultMaxItems
	}

	if cfg.Eviction.Strategy == "" {
		cfg.Eviction.Strategy = StrategyLRU
	}

	if cfg.Lifetime.Enabled() {
		if cfg.Lifetime.DefaultTTL <= 0 {
			cfg.Lifetime.DefaultTTL = Duration(DefaultTTL)
		}
		if cfg.Lifetime.SweepInterval <= 0 {
			cfg.Lifetime.SweepInterval = Duration(DefaultSweepInterval)
		}
		if cfg.Lifetime.SweepRate <= 0 {
			cfg.Lifetime.SweepRate = DefaultSweepRate
		}
	}

	if cfg.Telemetry.Enabled() && cfg.Telemetry.Interval <= 0 {
		cfg.Telemetry.Interval = Duration(DefaultTelemetryInterval)
	}
}

// DefaultTTLOrZero returns the configured default TTL, or zero when
// lifetime handling is disabled (entries never expire).
func (cfg *Config) DefaultTTLOrZero() int64 {
	if cfg.Lifetime.Enabled() {
		return cfg.Lifetime.DefaultTTL.Std().Nanoseconds()
	}
	return 0
}

func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.AdjustConfig()

	return cfg, nil
}
