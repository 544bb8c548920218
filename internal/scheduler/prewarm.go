package scheduler

import (
	"context"
	"time"

	"statusmirror/internal/logger"
	"statusmirror/internal/mirror"
)

// Prewarmer periodically refreshes the snapshot cache for every configured
// page so request latency never includes an upstream round trip. It is an
// optional layer on top of a pull-per-request core: without it (or without a
// cache) nothing in the process does background work.
type Prewarmer struct {
	service  *mirror.Service
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
}

func NewPrewarmer(service *mirror.Service, log logger.Logger, interval time.Duration) *Prewarmer {
	return &Prewarmer{
		service:  service,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start warms the cache once, then keeps refreshing on the interval.
func (p *Prewarmer) Start(ctx context.Context) {
	p.service.Prewarm(ctx)

	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.logger.Debug("prewarming snapshot cache")
				p.service.Prewarm(ctx)
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the refresh loop.
func (p *Prewarmer) Stop() {
	close(p.stopCh)
}
