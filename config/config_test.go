package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAdjustConfigDefaults(t *testing.T) {
	cfg := &Config{
		Lifetime:  &LifetimeCfg{},
		Telemetry: &TelemetryCfg{},
	}
	cfg.AdjustConfig()

	require.Equal(t, int64(DefaultMaxMemoryBytes), cfg.Memory.MaxBytes)
	require.Equal(t, int64(DefaultMaxItems), cfg.Memory.MaxItems)
	require.Equal(t, StrategyLRU, cfg.Eviction.Strategy)
	require.Equal(t, DefaultTTL, cfg.Lifetime.DefaultTTL.Std())
	require.Equal(t, DefaultSweepInterval, cfg.Lifetime.SweepInterval.Std())
	require.Equal(t, DefaultSweepRate, cfg.Lifetime.SweepRate)
	require.Equal(t, DefaultTelemetryInterval, cfg.Telemetry.Interval.Std())
}

func TestAdjustConfigKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Memory:   MemoryCfg{MaxBytes: 300, MaxItems: 3},
		Eviction: EvictionCfg{Strategy: StrategyFIFO},
		Lifetime: &LifetimeCfg{DefaultTTL: Duration(time.Minute), SweepInterval: Duration(time.Second), SweepRate: 5},
	}
	cfg.AdjustConfig()

	require.Equal(t, int64(300), cfg.Memory.MaxBytes)
	require.Equal(t, int64(3), cfg.Memory.MaxItems)
	require.Equal(t, StrategyFIFO, cfg.Eviction.Strategy)
	require.Equal(t, time.Minute, cfg.Lifetime.DefaultTTL.Std())
}

func TestDisabledSubsystems(t *testing.T) {
	cfg := &Config{}
	cfg.AdjustConfig()

	require.False(t, cfg.Lifetime.Enabled())
	require.False(t, cfg.Store.Enabled())
	require.False(t, cfg.Telemetry.Enabled())
	require.Zero(t, cfg.DefaultTTLOrZero())
}

func TestLoadConfig(t *testing.T) {
	raw := `
memory:
  max_bytes: 1048576
  max_items: 500
eviction:
  strategy: lfu
lifetime:
  default_ttl: 30m
  sweep_interval: 1m
store:
  path: /tmp/silo.db
telemetry:
  interval: 10s
`
	path := filepath.Join(t.TempDir(), "cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, int64(1048576), cfg.Memory.MaxBytes)
	require.Equal(t, int64(500), cfg.Memory.MaxItems)
	require.Equal(t, StrategyLFU, cfg.Eviction.Strategy)
	require.Equal(t, 30*time.Minute, cfg.Lifetime.DefaultTTL.Std())
	require.Equal(t, time.Minute, cfg.Lifetime.SweepInterval.Std())
	require.Equal(t, DefaultSweepRate, cfg.Lifetime.SweepRate) // defaulted
	require.True(t, cfg.Store.Enabled())
	require.Equal(t, "/tmp/silo.db", cfg.Store.Path)
	require.Equal(t, 10*time.Second, cfg.Telemetry.Interval.Std())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
