// Package sweeper runs the recurring expiry sweep: a provider scans both
// tiers for entries past their expiry and consumers remove them, paced so a
// backlog cannot monopolize the manager lock.
package sweeper

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/farmtech/go-silo-cache/config"
	"github.com/farmtech/go-silo-cache/internal/key"
	"github.com/farmtech/go-silo-cache/internal/shared/rate"
)

// Target is the slice of the manager the sweeper drives.
type Target interface {
	ExpiredKeys(limit int) []key.Key
	RemoveExpired(k key.Key) bool
}

type Sweeper interface {
	SweeperMetrics() (scans, hits, removed int64)
	Close() error
}

type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.LifetimeCfg
	logger   *slog.Logger
	clock    clock.Clock
	target   Target
	jitter   *rate.Jitter
	counters *sweeperCounters
	invokeCh chan key.Key
	done     chan struct{}
}

func New(
	ctx context.Context,
	cfg *config.LifetimeCfg,
	logger *slog.Logger,
	clk clock.Clock,
	target Target,
) Sweeper {
	if !cfg.Enabled() {
		return &NoOpSweeper{}
	}

	ctx, cancel := context.WithCancel(ctx)

	invokeCap := cfg.SweepRate
	if invokeCap <= 0 {
		invokeCap = 1
	}

	return (&Worker{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		clock:    clk,
		target:   target,
		jitter:   rate.NewJitter(ctx, cfg.SweepRate),
		counters: newSweeperCounters(),
		invokeCh: make(chan key.Key, invokeCap),
		done:     make(chan struct{}),
	}).run()
}

func (w *Worker) SweeperMetrics() (scans, hits, removed int64) {
	return w.counters.snapshot()
}

// Close signals the sweep loop to exit and joins it.
func (w *Worker) Close() error {
	w.cancel()
	<-w.done
	return nil
}

func (w *Worker) run() *Worker {
	w.logger.Info("sweeper is running",
		"interval", w.cfg.SweepInterval.String(), "rate", w.cfg.SweepRate)

	go func() {
		defer close(w.done)
		defer w.logger.Info("sweeper is stopped")
		var wg sync.WaitGroup
		for i := 0; i <= runtime.GOMAXPROCS(0); i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w.consumer()
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.provider()
		}()
		wg.Wait()
	}()

	return w
}

// provider - scans for expired entries each interval and hands them to consumers.
func (w *Worker) provider() {
	ticker := w.clock.Ticker(w.cfg.SweepInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.counters.scans.Add(1)
			expired := w.target.ExpiredKeys(w.cfg.SweepRate)
			if len(expired) == 0 {
				continue
			}
			w.counters.scanHits.Add(1)

			for _, k := range expired {
				select {
				case <-w.ctx.Done():
					return
				case w.invokeCh <- k:
				}
			}
		}
	}
}

// consumer - removes expired entries, paced by the jitter rate.
func (w *Worker) consumer() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case k := <-w.invokeCh:
			w.jitter.Take()
			if w.target.RemoveExpired(k) {
				w.counters.removed.Add(1)
			}
		}
	}
}
