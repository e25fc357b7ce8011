// Package sweep runs the background poll fallback over live generation jobs
package sweep

import (
	"context"
	"time"

	"github.com/productbird/connector/internal/db/models"
	"github.com/productbird/connector/internal/logger"
	"github.com/productbird/connector/internal/reconcile"
	"github.com/productbird/connector/internal/store"
)

const (
	// DefaultInterval is the default delay between sweep passes
	DefaultInterval = time.Hour
	// DefaultStartDelay pushes the first pass back so a freshly submitted
	// batch gets a chance to report via webhook first
	DefaultStartDelay = 5 * time.Minute
	// DefaultPageSize bounds how many live-job records one pass reads at a time
	DefaultPageSize = 100
)

// Runner periodically polls the service for every record still holding a
// live job and reconciles the responses. It is the fallback for deployments
// where webhooks do not reach the host.
type Runner struct {
	engine     *reconcile.Engine
	records    store.RecordStore
	interval   time.Duration
	startDelay time.Duration
	pageSize   int
}

// NewRunner creates a sweep runner. Zero values fall back to the defaults.
func NewRunner(engine *reconcile.Engine, records store.RecordStore, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		engine:     engine,
		records:    records,
		interval:   interval,
		startDelay: DefaultStartDelay,
		pageSize:   DefaultPageSize,
	}
}

// WithStartDelay overrides the delay before the first pass. A zero delay
// starts sweeping immediately.
func (r *Runner) WithStartDelay(delay time.Duration) *Runner {
	r.startDelay = delay
	return r
}

// Start runs sweep passes until the context is canceled
func (r *Runner) Start(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(r.startDelay):
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single sweep pass, paging through live-job records.
// Per-item poll failures are logged and skipped so one bad job cannot stall
// the rest of the pass.
func (r *Runner) RunOnce(ctx context.Context) {
	var polled, failed int

	// Settled records leave the live set mid-pass, which can shift later
	// pages; anything skipped is picked up on the next pass.
	for offset := 0; ; offset += r.pageSize {
		recs, err := r.records.ListLiveJobs(ctx, &models.ListOptions{Limit: r.pageSize, Offset: offset})
		if err != nil {
			logger.Errorf("sweep: failed to list live jobs: %v", err)
			return
		}
		if len(recs) == 0 {
			break
		}

		for _, rec := range recs {
			if ctx.Err() != nil {
				return
			}
			if err := r.engine.PollLive(ctx, rec.ItemID); err != nil {
				failed++
				continue
			}
			polled++
		}

		if len(recs) < r.pageSize {
			break
		}
	}

	if polled+failed > 0 {
		logger.InfoWithFields("Sweep pass finished", map[string]interface{}{
			"polled": polled,
			"failed": failed,
		})
	}
}
