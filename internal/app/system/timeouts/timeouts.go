// Package timeouts holds the per-call deadlines used for gateway work.
//
// Every store and metrics query derives its own context from one of these
// so a slow collection never stalls the rest of a dashboard refresh.
//
//   - Ping: health checks
//   - Short: single-document reads, counts
//   - Medium: list queries, writes
//   - Long: dashboard snapshots, multi-collection joins
//   - Export: full-table reads behind CSV/XLSX downloads
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults used until Configure is called.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultExport = 60 * time.Second
)

var (
	mu     sync.RWMutex
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	export = DefaultExport
)

func get(v *time.Duration) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return *v
}

// Ping is the health-check timeout.
func Ping() time.Duration { return get(&ping) }

// Short is the timeout for single reads and counts.
func Short() time.Duration { return get(&short) }

// Medium is the timeout for lists and writes.
func Medium() time.Duration { return get(&medium) }

// Long is the timeout for snapshot loads.
func Long() time.Duration { return get(&long) }

// Export is the timeout for full-table export reads.
func Export() time.Duration { return get(&export) }

// Config holds timeout values. Zero values keep the current setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Export time.Duration
}

// Configure overrides the timeouts. Call it at startup before handlers run.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	set := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	set(&ping, cfg.Ping)
	set(&short, cfg.Short)
	set(&medium, cfg.Medium)
	set(&long, cfg.Long)
	set(&export, cfg.Export)
}

// Reset restores the defaults. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping, short, medium, long, export = DefaultPing, DefaultShort, DefaultMedium, DefaultLong, DefaultExport
}

// Current returns the active configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Medium: medium, Long: long, Export: export}
}

// WithTimeout derives a context with timeout. The returned cancel logs a
// warning when the deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Export(), h.Log, "export properties")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
