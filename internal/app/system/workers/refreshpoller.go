package workers

import (
	"context"
	"sync"
	"time"

	"github.com/homeandown/estatehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// RefreshFunc reloads one dashboard view.
type RefreshFunc func(ctx context.Context) error

// RefreshPoller periodically reloads dashboard snapshots so that views stay
// current without a realtime event.
type RefreshPoller struct {
	jobs     map[string]RefreshFunc
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewRefreshPoller creates the poller. jobs maps a label to its reload.
func NewRefreshPoller(jobs map[string]RefreshFunc, logger *zap.Logger, interval time.Duration) *RefreshPoller {
	return &RefreshPoller{
		jobs:     jobs,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (p *RefreshPoller) Start() {
	p.wg.Add(1)
	go p.run()
	p.log.Info("refresh poller started",
		zap.Duration("interval", p.interval),
		zap.Int("jobs", len(p.jobs)))
}

func (p *RefreshPoller) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	p.log.Info("refresh poller stopped")
}

func (p *RefreshPoller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.Poll()
		}
	}
}

// Poll runs every job once, concurrently, and returns the number that
// failed. A failed job is logged and does not affect the others.
func (p *RefreshPoller) Poll() int {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
	defer cancel()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for name, fn := range p.jobs {
		wg.Add(1)
		go func(name string, fn RefreshFunc) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				p.log.Warn("scheduled refresh failed", zap.String("job", name), zap.Error(err))
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(name, fn)
	}
	wg.Wait()
	return failed
}
