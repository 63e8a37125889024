package watcher

import (
	"context"
	"time"

	"github.com/avetrov/kaiten-mirror/internal/logger"
	"github.com/avetrov/kaiten-mirror/internal/sync"
)

// Syncer interface for dependency injection
type Syncer interface {
	Sync(ctx context.Context, opts sync.Options) []sync.Result
}

// Watcher drives the periodic incremental sync. One full pass over every
// entity type per tick; runs never overlap because ticks are consumed
// sequentially.
type Watcher struct {
	syncer   Syncer
	interval time.Duration
	log      *logger.Logger
}

func New(syncer Syncer, interval time.Duration, log *logger.Logger) *Watcher {
	return &Watcher{
		syncer:   syncer,
		interval: interval,
		log:      log,
	}
}

// Start begins the periodic sync loop. Blocks until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.log.Info("starting periodic incremental sync", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher shutting down")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context) {
	results := w.syncer.Sync(ctx, sync.Options{Incremental: true})

	var failed int
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	if failed > 0 {
		w.log.Warn("periodic sync finished with failures", "entities", len(results), "failed", failed)
		return
	}
	w.log.Info("periodic sync finished", "entities", len(results))
}
