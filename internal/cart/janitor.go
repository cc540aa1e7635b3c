package cart

import (
	"context"
	"time"

	"github.com/kapilraj10/pos-storefront/pkg/logger"
	"github.com/kapilraj10/pos-storefront/pkg/metrics"
)

const janitorJobName = "cart_janitor"

// Janitor evicts carts whose sessions have gone idle past the session TTL.
// Carts live only in process memory, so without a sweep the store grows with
// every guest session the server has ever seen.
type Janitor struct {
	store    *Store
	jobs     *metrics.CronJobMetrics
	logg     *logger.Logger
	interval time.Duration
	maxIdle  time.Duration
}

func NewJanitor(store *Store, jobs *metrics.CronJobMetrics, logg *logger.Logger, interval, maxIdle time.Duration) *Janitor {
	return &Janitor{
		store:    store,
		jobs:     jobs,
		logg:     logg,
		interval: interval,
		maxIdle:  maxIdle,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one eviction pass and records the outcome.
func (j *Janitor) Sweep(ctx context.Context) int {
	start := time.Now()
	removed := j.store.PruneIdle(j.maxIdle)
	j.jobs.ObserveDuration(janitorJobName, time.Since(start))
	j.jobs.IncSuccess(janitorJobName)

	if removed > 0 {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{
			"removed":   removed,
			"remaining": j.store.Len(),
		}), "evicted idle carts")
	}
	return removed
}
