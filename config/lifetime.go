package config

import "time"

const (
	DefaultTTL           = time.Hour
	DefaultSweepInterval = 5 * time.Minute
	DefaultSweepRate     = 1000
)

type LifetimeCfg struct {
	// DefaultTTL applies to entries stored without an explicit TTL.
	// Example: "1h".
	DefaultTTL Duration `yaml:"default_ttl"`

	// SweepInterval is how often the background sweeper scans for
	// entries past their expiry. Example: "5m".
	SweepInterval Duration `yaml:"sweep_interval"`

	// SweepRate limits how many expired entries the sweeper removes per
	// second, so a large backlog cannot monopolize the manager lock.
	SweepRate int `yaml:"sweep_rate"`
}

func (cfg *LifetimeCfg) Enabled() bool {
	return cfg != nil
}
