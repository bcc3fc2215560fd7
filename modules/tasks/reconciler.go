package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/go-monolith/mono/pkg/types"
)

type reindexer interface {
	Reindex(ctx context.Context) (ReindexResult, error)
}

// Reconciler periodically re-mirrors the document store into the search
// index and drops orphaned index documents, repairing drift left by
// swallowed mirror failures.
type Reconciler struct {
	target     reindexer
	interval   time.Duration
	runOnStart bool
	logger     types.Logger

	cancel   context.CancelFunc
	doneChan chan struct{}
	stopOnce sync.Once
}

// NewReconciler creates a reconciler. A non-positive interval disables the
// periodic sweep; runOnStart still triggers one sweep at start.
func NewReconciler(target reindexer, interval time.Duration, runOnStart bool, logger types.Logger) *Reconciler {
	return &Reconciler{
		target:     target,
		interval:   interval,
		runOnStart: runOnStart,
		logger:     logger,
	}
}

// Enabled reports whether Start launches a background loop.
func (r *Reconciler) Enabled() bool {
	return r.interval > 0 || r.runOnStart
}

// Start launches the background loop if enabled.
func (r *Reconciler) Start() {
	if !r.Enabled() || r.doneChan != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.doneChan = make(chan struct{})

	go r.run(ctx)
	r.logger.Info("Reconciler started", "interval", r.interval, "run_on_start", r.runOnStart)
}

func (r *Reconciler) run(ctx context.Context) {
	defer close(r.doneChan)

	if r.runOnStart {
		r.sweep(ctx)
	}
	if r.interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reconciler) sweep(ctx context.Context) {
	res, err := r.target.Reindex(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("Reconciliation sweep failed", "error", err)
		}
		return
	}
	if res.Failed > 0 {
		r.logger.Warn("Reconciliation sweep left drift", "indexed", res.Indexed, "removed", res.Removed, "failed", res.Failed)
	}
}

// Stop cancels the loop and waits for it to exit or for ctx to expire.
func (r *Reconciler) Stop(ctx context.Context) error {
	if r.doneChan == nil {
		return nil
	}
	r.stopOnce.Do(r.cancel)

	select {
	case <-r.doneChan:
		r.logger.Info("Reconciler stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("Reconciler shutdown timeout exceeded")
		return ctx.Err()
	}
}
