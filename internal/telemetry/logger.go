// Package telemetry periodically logs cache activity deltas and memory-tier
// gauges for operational visibility.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/farmtech/go-silo-cache/config"
	"github.com/farmtech/go-silo-cache/internal/shared/bytes"
)

type Logger interface {
	Interval() time.Duration
	Close() error
}

type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Config
	logger   *slog.Logger
	sampler  sampler
	interval time.Duration
}

func New(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	source Source,
	sweeper SweepSource,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	interval := config.DefaultTelemetryInterval
	if cfg.Telemetry.Enabled() {
		interval = cfg.Telemetry.Interval.Std()
	}
	return (&Logs{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		sampler:  newSampler(source, sweeper),
		interval: interval,
	}).run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg.Telemetry.Enabled() {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	budget := bytes.FmtMem(uint64(l.cfg.Memory.MaxBytes))
	prev := l.sampler.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := l.sampler.snapshot()
			d := deltaSnapshot(prev, cur)
			prev = cur

			common := []any{"interval", l.interval.String()}
			stats := l.sampler.source.Stats()

			l.logger.Info("cache_activity",
				append(common,
					"hits", int64(d.hits),
					"misses", int64(d.misses),
					"sets", int64(d.sets),
					"deletes", int64(d.deletes),
					"evictions", int64(d.evictions),
					"hit_rate", stats.HitRate,
				)...,
			)

			if l.cfg.Lifetime.Enabled() {
				l.logger.Info("expiry_sweeper",
					append(common,
						"scans", int64(d.sweepScans),
						"hits", int64(d.sweepHits),
						"removed", int64(d.sweepRemoved),
					)...,
				)
			}

			l.logger.Info("storage",
				append(common,
					"size", bytes.FmtMem(uint64(stats.MemoryUsageBytes)),
					"entries", stats.ItemsInMemory,
					"budget", budget,
					"max_items", l.cfg.Memory.MaxItems,
				)...,
			)
		}
	}
}
