// Package refresh de-duplicates dashboard reloads and keeps the newest
// snapshot per scope.
//
// Concurrent Refresh calls for one scope share a single in-flight load.
// Every load is stamped with a generation number when it starts, and a
// finished load is stored only if no later-started load has already been
// stored, so a slow stale response never replaces a fresher one.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/homeandown/estatehub/internal/app/system/telemetry"
	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader builds the snapshot for scope.
type Loader[T any] func(ctx context.Context, scope string) (T, error)

// Snapshot is a stored load result.
type Snapshot[T any] struct {
	Value    T
	Gen      uint64
	LoadedAt time.Time
}

// Coordinator owns the snapshots for one kind of view (admin dashboard,
// agent dashboards, ...).
type Coordinator[T any] struct {
	name    string
	load    Loader[T]
	log     *zap.Logger
	metrics *telemetry.Metrics
	now     func() time.Time

	group singleflight.Group

	mu     sync.Mutex
	issued uint64
	snaps  map[string]Snapshot[T]
}

// New returns a Coordinator. name labels metrics and logs.
func New[T any](name string, load Loader[T], log *zap.Logger, m *telemetry.Metrics) *Coordinator[T] {
	return &Coordinator[T]{
		name:    name,
		load:    load,
		log:     log,
		metrics: m,
		now:     time.Now,
		snaps:   map[string]Snapshot[T]{},
	}
}

func (c *Coordinator[T]) nextGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	return c.issued
}

// store keeps s unless a newer generation is already stored. It reports
// whether s was kept.
func (c *Coordinator[T]) store(scope string, s Snapshot[T]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.snaps[scope]; ok && cur.Gen > s.Gen {
		return false
	}
	c.snaps[scope] = s
	return true
}

// Current returns the stored snapshot for scope, if any.
func (c *Coordinator[T]) Current(scope string) (Snapshot[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.snaps[scope]
	return s, ok
}

// Scopes lists the scopes that have a snapshot.
func (c *Coordinator[T]) Scopes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.snaps))
	for s := range c.snaps {
		out = append(out, s)
	}
	return out
}

// Refresh loads scope, joining a load already in flight. The returned
// snapshot is the newest stored one, which may be newer than the load this
// call joined.
func (c *Coordinator[T]) Refresh(ctx context.Context, scope string) (Snapshot[T], error) {
	start := c.now()
	ch := c.group.DoChan(scope, func() (any, error) {
		gen := c.nextGen()
		// The load outlives any single caller's cancellation.
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Long())
		defer cancel()

		v, err := c.load(lctx, scope)
		if err != nil {
			return nil, err
		}
		s := Snapshot[T]{Value: v, Gen: gen, LoadedAt: c.now()}
		if !c.store(scope, s) {
			c.log.Debug("discarded stale refresh",
				zap.String("coordinator", c.name),
				zap.String("scope", scope),
				zap.Uint64("gen", gen))
		}
		return s, nil
	})

	select {
	case <-ctx.Done():
		return Snapshot[T]{}, ctx.Err()
	case res := <-ch:
		outcome := "ok"
		switch {
		case res.Err != nil:
			outcome = "error"
		case res.Shared:
			outcome = "shared"
		}
		c.metrics.Refresh(c.name, outcome, c.now().Sub(start))
		if res.Err != nil {
			c.log.Warn("refresh failed",
				zap.String("coordinator", c.name),
				zap.String("scope", scope),
				zap.Error(res.Err))
			return Snapshot[T]{}, res.Err
		}
		if cur, ok := c.Current(scope); ok {
			return cur, nil
		}
		return res.Val.(Snapshot[T]), nil
	}
}

// Invalidate starts a fresh load for scope even when one is in flight, so
// data written before this call is reflected. The in-flight load, having
// an older generation, cannot overwrite the result.
func (c *Coordinator[T]) Invalidate(ctx context.Context, scope string) (Snapshot[T], error) {
	c.group.Forget(scope)
	return c.Refresh(ctx, scope)
}

// Get returns the stored snapshot when it is younger than maxAge and
// refreshes otherwise.
func (c *Coordinator[T]) Get(ctx context.Context, scope string, maxAge time.Duration) (Snapshot[T], error) {
	if s, ok := c.Current(scope); ok && c.now().Sub(s.LoadedAt) < maxAge {
		return s, nil
	}
	return c.Refresh(ctx, scope)
}
