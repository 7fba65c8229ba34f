// internal/app/system/workers/assignmentexpiry.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/homeandown/estatehub/internal/app/system/telemetry"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Expirer marks overdue pending assignments as expired.
type Expirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// AssignmentExpiry is a background worker that expires agent assignments
// left pending past their deadline.
type AssignmentExpiry struct {
	store    Expirer
	log      *zap.Logger
	metrics  *telemetry.Metrics
	interval time.Duration
	onExpire func(ctx context.Context, n int64)
	now      func() time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewAssignmentExpiry creates the worker. onExpire, when non-nil, runs after
// a sweep that expired at least one assignment (used to refresh dashboards).
func NewAssignmentExpiry(store Expirer, logger *zap.Logger, m *telemetry.Metrics, interval time.Duration, onExpire func(ctx context.Context, n int64)) *AssignmentExpiry {
	return &AssignmentExpiry{
		store:    store,
		log:      logger,
		metrics:  m,
		interval: interval,
		onExpire: onExpire,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *AssignmentExpiry) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("assignment expiry worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *AssignmentExpiry) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("assignment expiry worker stopped")
}

func (w *AssignmentExpiry) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

// Sweep runs one expiry pass.
func (w *AssignmentExpiry) Sweep() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()

	count, err := w.store.ExpireOverdue(ctx, w.now().UTC())
	if err != nil {
		w.log.Error("failed to expire assignments", zap.Error(err))
		return 0
	}

	if count > 0 {
		w.metrics.Expired(count)
		w.log.Info("expired assignments", zap.Int64("count", count))
		if w.onExpire != nil {
			w.onExpire(ctx, count)
		}
	}
	return count
}
