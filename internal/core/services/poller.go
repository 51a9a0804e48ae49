package services

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/harborist/contextd/internal/core/ports/driving"
	"github.com/harborist/contextd/internal/logger"
)

// Ensure Poller implements the interface.
var _ driving.Poller = (*Poller)(nil)

// Poller runs background polling loops that invoke the sync service over a
// fixed snapshot of documents at a fixed interval. The loop's resilience
// contract: a failure on one document never aborts the cycle, a failure of
// a whole cycle never terminates the loop, and the interval stays fixed
// with no backoff.
type Poller struct {
	sync driving.SyncService

	mu      sync.Mutex
	cancels []context.CancelFunc
	wg      sync.WaitGroup
}

// NewPoller creates a poller driving the given sync service.
func NewPoller(syncSvc driving.SyncService) *Poller {
	return &Poller{sync: syncSvc}
}

// Start begins a polling loop for a tenant over a snapshot of documentIDs
// and returns immediately. Nothing prevents overlapping loops for the same
// tenant; duplicate uploads from concurrent cycles are absorbed by the
// per-document single-flight guard in the sync service.
func (p *Poller) Start(ctx context.Context, tenantID string, documentIDs []string, interval time.Duration) {
	snapshot := slices.Clone(documentIDs)
	loopCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.cancels = append(p.cancels, cancel)
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()
		p.run(loopCtx, tenantID, snapshot, interval)
	}()

	logger.Info("Started polling %d documents for tenant %s (interval %s)",
		len(snapshot), tenantID, interval)
}

// Stop cancels all running loops and waits for them to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	for _, cancel := range p.cancels {
		cancel()
	}
	p.cancels = nil
	p.mu.Unlock()

	p.wg.Wait()
}

// run is the loop body: one cycle, then a fixed-interval sleep, forever.
func (p *Poller) run(ctx context.Context, tenantID string, documentIDs []string, interval time.Duration) {
	for {
		p.cycle(ctx, tenantID, documentIDs)

		select {
		case <-ctx.Done():
			logger.Info("Stopping polling for tenant %s", tenantID)
			return
		case <-time.After(interval):
		}
	}
}

// cycle attempts every document in snapshot order. Per-document errors are
// logged and skipped; a panic is recovered so the loop retries next cycle.
func (p *Poller) cycle(ctx context.Context, tenantID string, documentIDs []string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Poll cycle panicked for tenant %s: %v", tenantID, r)
		}
	}()

	for _, id := range documentIDs {
		if ctx.Err() != nil {
			return
		}
		if _, err := p.sync.Sync(ctx, id, tenantID); err != nil {
			logger.Warn("Sync failed for %s: %v", id, err)
		}
	}
}
