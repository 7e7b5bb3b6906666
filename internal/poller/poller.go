// Package poller drives the fetch, reconcile and publish cycle on a fixed
// period.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/marker"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/reconcile"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// ErrAlreadyRunning is returned by Start on a running poller.
var ErrAlreadyRunning = errors.New("poller already running")

// Fetcher lists a tenant's orders.
type Fetcher interface {
	List(ctx context.Context, tenantID string) ([]order.Order, error)
}

// Sink receives each reconciled batch. It replaces whatever it held before.
type Sink interface {
	Publish(ctx context.Context, orders []order.Order, recentlyChanged marker.Set)
}

// Poller runs one cycle immediately on Start and then one per tick. A slow
// cycle does not hold back the next tick.
type Poller struct {
	interval time.Duration
	fetcher  Fetcher
	tracker  *reconcile.Tracker
	sink     Sink
	logger   logger.Logger

	mu         sync.Mutex // guards cancelFunc across Start and Stop
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	running    *atomic.Bool
	cycles     *atomic.Int64
}

// New creates a Poller for the tracker's tenant.
func New(interval time.Duration, fetcher Fetcher, tracker *reconcile.Tracker, sink Sink, log logger.Logger) *Poller {
	return &Poller{
		interval: interval,
		fetcher:  fetcher,
		tracker:  tracker,
		sink:     sink,
		logger:   log,
		running:  atomic.NewBool(false),
		cycles:   atomic.NewInt64(0),
	}
}

// Start launches the polling loop. It returns immediately.
func (p *Poller) Start(parentCtx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running.CAS(false, true) {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(parentCtx)
	p.cancelFunc = cancel

	p.logger.Infof(ctx, "[Poller] Starting for tenant %s every %s", p.tracker.TenantID(), p.interval)

	p.wg.Add(1)
	go p.loop(ctx)

	return nil
}

// Stop cancels the loop and every in-flight cycle. Safe to call twice.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running.CAS(true, false) {
		return
	}
	p.logger.Infof(context.Background(), "[Poller] Stopping...")
	p.cancelFunc()
	p.cancelFunc = nil
}

// Wait blocks until the loop and all in-flight cycles have exited.
func (p *Poller) Wait() {
	p.wg.Wait()
	p.logger.Infof(context.Background(), "[Poller] All cycles exited")
}

// Cycles returns how many cycles completed a publish.
func (p *Poller) Cycles() int64 {
	return p.cycles.Load()
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.spawn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.spawn(ctx)
		}
	}
}

func (p *Poller) spawn(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_ = p.RunOnce(ctx)
	}()
}

// RunOnce performs a single cycle synchronously. A failed fetch leaves the
// tracker and the sink untouched.
func (p *Poller) RunOnce(ctx context.Context) error {
	ctx = logger.WithTenantID(logger.WithTraceID(ctx, uuid.NewString()), p.tracker.TenantID())

	// 1. fetch
	fetched, err := p.fetcher.List(ctx, p.tracker.TenantID())
	if err != nil {
		p.logger.Warnf(ctx, "[Poller] Fetch failed, skipping cycle: %v", err)
		return fmt.Errorf("fetch orders: %w", err)
	}

	// torn down while the fetch was in flight
	if err := ctx.Err(); err != nil {
		return err
	}

	// 2. reconcile
	res := p.tracker.Apply(ctx, fetched)

	// 3. publish
	p.sink.Publish(ctx, res.Orders, res.RecentlyChanged)
	p.cycles.Inc()

	p.logger.Debugf(ctx, "[Poller] Cycle done: %d orders, %d changed", len(res.Orders), len(res.RecentlyChanged))
	return nil
}
