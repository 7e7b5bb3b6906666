package reconcile

import (
	"context"
	"sync"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/marker"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// Tracker owns one tenant's reconciliation state: the last snapshot, the
// sticky marker set and the ids changed in the latest pass. Every mutation
// of the sticky set is persisted before the call returns.
type Tracker struct {
	mu sync.Mutex

	tenantID string
	store    *marker.Store
	logger   logger.Logger

	snapshot Snapshot
	sticky   marker.Set
	recently marker.Set
}

// NewTracker creates a Tracker and loads the tenant's persisted markers.
func NewTracker(ctx context.Context, tenantID string, store *marker.Store, log logger.Logger) *Tracker {
	return &Tracker{
		tenantID: tenantID,
		store:    store,
		logger:   log,
		snapshot: Snapshot{},
		sticky:   store.Load(ctx, tenantID),
		recently: marker.Set{},
	}
}

// TenantID returns the tenant the tracker works for.
func (t *Tracker) TenantID() string {
	return t.tenantID
}

// Apply reconciles a fetched batch against the tracker state, persists the
// marker set once and returns the flagged orders.
func (t *Tracker) Apply(ctx context.Context, fetched []order.Order) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	// another dashboard may have written markers since this one started
	if len(t.sticky) == 0 {
		if stored := t.store.Load(ctx, t.tenantID); len(stored) > 0 {
			t.logger.Debugf(ctx, "[Tracker] picked up %d stored markers", len(stored))
			t.sticky = stored
		}
	}

	res := Reconcile(t.snapshot, t.sticky, fetched)

	t.store.Save(ctx, t.tenantID, res.Sticky)
	t.snapshot = res.Snapshot
	t.sticky = res.Sticky
	t.recently = res.RecentlyChanged

	if len(res.RecentlyChanged) > 0 {
		t.logger.Infof(ctx, "[Tracker] content changed: %v", res.RecentlyChanged.Sorted())
	}

	return Result{
		Orders:          res.Orders,
		Snapshot:        cloneSnapshot(res.Snapshot),
		Sticky:          res.Sticky.Clone(),
		RecentlyChanged: res.RecentlyChanged.Clone(),
	}
}

// Acknowledge clears the marker of an order a user has acted on.
func (t *Tracker) Acknowledge(ctx context.Context, orderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sticky.Remove(orderID)
	t.store.Save(ctx, t.tenantID, t.sticky)
}

// Flag marks an order as altered, e.g. after a local content edit.
func (t *Tracker) Flag(ctx context.Context, orderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sticky.Add(orderID)
	t.store.Save(ctx, t.tenantID, t.sticky)
}

// Sticky returns a copy of the marker set.
func (t *Tracker) Sticky() marker.Set {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sticky.Clone()
}

// RecentlyChanged returns a copy of the ids changed in the latest pass.
func (t *Tracker) RecentlyChanged() marker.Set {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recently.Clone()
}

func cloneSnapshot(s Snapshot) Snapshot {
	c := make(Snapshot, len(s))
	for id, sig := range s {
		c[id] = sig
	}
	return c
}
