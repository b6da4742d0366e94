// Package poller runs periodic re-fetches (admin watch, wallet refresh) on a
// cron schedule.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Job is one unit of periodic work. It receives the context passed to Start.
type Job func(ctx context.Context) error

// Poller wraps a cron scheduler. Runs of the same job never overlap; a slow
// run causes the next tick to be skipped.
type Poller struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Poller. A nil logger discards output.
func New(logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))

	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{cron: c, logger: logger, ctx: ctx, cancel: cancel}
}

// Every registers fn under name with a cron spec ("@every 30s", "*/5 * * * *").
func (p *Poller) Every(name, spec string, fn Job) error {
	_, err := p.cron.AddFunc(spec, func() {
		p.mu.Lock()
		ctx := p.ctx
		p.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if err := fn(ctx); err != nil {
			p.logger.Error("poll failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling %s (%q): %w", name, spec, err)
	}
	p.logger.Info("scheduled poll", "job", name, "schedule", spec)
	return nil
}

// Start begins running jobs. Jobs see a context derived from ctx; cancelling
// it stops new runs from doing work.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	p.cancel()
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()
	p.cron.Start()
}

// Stop halts the scheduler and cancels running jobs. The returned context is
// done once running jobs have returned.
func (p *Poller) Stop() context.Context {
	p.mu.Lock()
	p.cancel()
	p.mu.Unlock()
	return p.cron.Stop()
}
