// Package archiver periodically moves expired published tenders to Archived.
package archiver

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper archives every published tender whose deadline has passed and
// reports how many changed.
type Sweeper interface {
	ArchiveExpired(ctx context.Context) (int64, error)
}

// Archiver runs the sweep on a fixed interval from a single goroutine, so two
// sweeps never overlap.
type Archiver struct {
	sweeper  Sweeper
	interval time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(sweeper Sweeper, interval time.Duration, log *zap.Logger) *Archiver {
	return &Archiver{sweeper: sweeper, interval: interval, log: log}
}

// RunOnce performs a single sweep. Failures are logged and returned; the
// next tick retries.
func (a *Archiver) RunOnce(ctx context.Context) (int64, error) {
	n, err := a.sweeper.ArchiveExpired(ctx)
	if err != nil {
		a.log.Error("archive sweep failed", zap.Error(err))
		return 0, err
	}
	if n > 0 {
		a.log.Info("archived expired tenders", zap.Int64("count", n))
	}
	return n, nil
}

// Start sweeps once immediately and then on every tick until ctx is done or
// Stop is called. Calling Start on a running archiver does nothing.
func (a *Archiver) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()

		_, _ = a.RunOnce(ctx)
		for {
			select {
			case <-ticker.C:
				_, _ = a.RunOnce(ctx)
			case <-ctx.Done():
				a.log.Info("archiver stopped")
				return
			}
		}
	}(a.done)
	a.log.Info("archiver started", zap.Duration("interval", a.interval))
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (a *Archiver) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
