package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ReindexResult summarizes one reconciliation sweep.
type ReindexResult struct {
	Indexed  int           `json:"indexed"`
	Removed  int           `json:"removed"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Reindex upserts every stored task into the search index and removes index
// documents whose task no longer exists. Concurrent calls share a single
// sweep; the sweep outlives a caller whose ctx is cancelled.
func (e *Engine) Reindex(ctx context.Context) (ReindexResult, error) {
	ch := e.reindexGroup.DoChan("reindex", func() (any, error) {
		return e.reindex(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return ReindexResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return ReindexResult{}, res.Err
		}
		if res.Shared {
			e.logger.Debug("Reindex joined an in-flight sweep")
		}
		return res.Val.(ReindexResult), nil
	}
}

func (e *Engine) reindex(ctx context.Context) (ReindexResult, error) {
	start := e.now()

	// Snapshot the index before the store: a task is mirrored only after it
	// is stored, so an indexed id missing from the later store read is gone.
	indexed, idsErr := e.index.IDs(ctx)
	if idsErr != nil {
		e.logger.Warn("Reindex could not list indexed documents", "error", idsErr)
	}

	all, err := e.store.All(ctx)
	if err != nil {
		return ReindexResult{}, fmt.Errorf("load tasks for reindex: %w", err)
	}

	var upserted, removed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.reindexConcurrency)

	stored := make(map[string]struct{}, len(all))
	for _, t := range all {
		stored[t.ID] = struct{}{}
		g.Go(func() error {
			if err := e.index.Upsert(gctx, t.ID, t.Document); err != nil {
				failed.Add(1)
				e.logger.Warn("Reindex upsert failed", "task_id", t.ID, "error", err)
				return nil
			}
			upserted.Add(1)
			return nil
		})
	}

	for _, id := range indexed {
		if _, ok := stored[id]; ok {
			continue
		}
		g.Go(func() error {
			if err := e.index.Remove(gctx, id); err != nil {
				failed.Add(1)
				e.logger.Warn("Reindex orphan removal failed", "task_id", id, "error", err)
				return nil
			}
			removed.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	result := ReindexResult{
		Indexed:  int(upserted.Load()),
		Removed:  int(removed.Load()),
		Failed:   int(failed.Load()),
		Duration: e.now().Sub(start),
	}
	if idsErr != nil {
		result.Failed++
	}
	e.logger.Info("Reindex completed",
		"indexed", result.Indexed, "removed", result.Removed, "failed", result.Failed, "duration", result.Duration)
	return result, nil
}
