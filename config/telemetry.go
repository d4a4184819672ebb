package config

import "time"

const DefaultTelemetryInterval = 5 * time.Second

type TelemetryCfg struct {
	// Interval is how often cache stats are logged. Example: "5s".
	Interval Duration `yaml:"interval"`
}

func (cfg *TelemetryCfg) Enabled() bool {
	return cfg != nil
}
