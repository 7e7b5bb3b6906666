package reconcile

import (
	"context"
	"testing"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/marker"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/signature"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

func newOrder(id string, price float64, status order.Status) order.Order {
	items := []order.LineItem{{Name: "Arroz", Quantity: 1, UnitPrice: price}}
	return order.Order{
		ID:           id,
		CustomerName: "Maria",
		Phone:        "85999990000",
		Items:        items,
		Total:        order.ComputeTotal(items),
		Status:       status,
	}
}

func find(t *testing.T, orders []order.Order, id string) order.Order {
	t.Helper()
	for _, o := range orders {
		if o.ID == id {
			return o
		}
	}
	t.Fatalf("order %s not in result", id)
	return order.Order{}
}

func TestReconcileDetectsChange(t *testing.T) {
	t.Parallel()

	a := newOrder("A", 10, order.StatusPending)
	prev := Snapshot{"A": signature.Of(a)}

	res := Reconcile(prev, marker.Set{}, []order.Order{newOrder("A", 11, order.StatusPending)})

	if !find(t, res.Orders, "A").Altered {
		t.Fatalf("expected A altered")
	}
	if !res.Sticky.Has("A") || !res.RecentlyChanged.Has("A") {
		t.Fatalf("expected A sticky and recently changed, got %v / %v", res.Sticky.Sorted(), res.RecentlyChanged.Sorted())
	}
}

func TestReconcileFirstSightIsNeverChanged(t *testing.T) {
	t.Parallel()

	res := Reconcile(Snapshot{}, marker.Set{}, []order.Order{newOrder("A", 10, order.StatusPending)})

	if find(t, res.Orders, "A").Altered {
		t.Fatalf("expected first sight not to be altered")
	}
	if len(res.Sticky) != 0 || len(res.RecentlyChanged) != 0 {
		t.Fatalf("expected no markers, got %v / %v", res.Sticky.Sorted(), res.RecentlyChanged.Sorted())
	}
	if res.Snapshot["A"] == "" {
		t.Fatalf("expected A recorded in snapshot")
	}
}

func TestReconcileStatusOnlyChangeIsNotAltered(t *testing.T) {
	t.Parallel()

	a := newOrder("A", 10, order.StatusPending)
	prev := Snapshot{"A": signature.Of(a)}

	res := Reconcile(prev, marker.Set{}, []order.Order{newOrder("A", 10, order.StatusPicked)})
	if find(t, res.Orders, "A").Altered || len(res.RecentlyChanged) != 0 {
		t.Fatalf("expected status move not to count as a change")
	}
}

func TestReconcileTerminalClearsMarker(t *testing.T) {
	t.Parallel()

	for _, st := range []order.Status{order.StatusDelivered, order.StatusInvoiced} {
		a := newOrder("A", 10, st)
		prev := Snapshot{"A": signature.Of(a)}

		res := Reconcile(prev, marker.NewSet("A"), []order.Order{a})
		if res.Sticky.Has("A") {
			t.Fatalf("%s: expected marker cleared", st)
		}
		if find(t, res.Orders, "A").Altered {
			t.Fatalf("%s: expected not altered once cleared", st)
		}
	}
}

func TestReconcileTerminalStillShowsSameCycleChange(t *testing.T) {
	t.Parallel()

	prev := Snapshot{"A": signature.Of(newOrder("A", 10, order.StatusPicked))}
	res := Reconcile(prev, marker.NewSet("A"), []order.Order{newOrder("A", 12, order.StatusDelivered)})

	if res.Sticky.Has("A") {
		t.Fatalf("expected terminal order to leave sticky set")
	}
	if !find(t, res.Orders, "A").Altered || !res.RecentlyChanged.Has("A") {
		t.Fatalf("expected the change itself still displayed this cycle")
	}
}

func TestReconcileServerHint(t *testing.T) {
	t.Parallel()

	a := newOrder("A", 10, order.StatusPending)
	a.Altered = true

	res := Reconcile(Snapshot{}, marker.Set{}, []order.Order{a})
	if !find(t, res.Orders, "A").Altered || !res.Sticky.Has("A") {
		t.Fatalf("expected server hint to flag and stick")
	}
	if res.RecentlyChanged.Has("A") {
		t.Fatalf("expected hint not to count as a detected change")
	}
}

func TestReconcileStickySurvivesUnchangedCycles(t *testing.T) {
	t.Parallel()

	a := newOrder("A", 10, order.StatusPending)
	prev := Snapshot{"A": signature.Of(a)}

	res := Reconcile(prev, marker.NewSet("A"), []order.Order{a})
	if !find(t, res.Orders, "A").Altered || !res.Sticky.Has("A") {
		t.Fatalf("expected sticky marker to keep A altered")
	}
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	a := newOrder("A", 10, order.StatusDelivered)
	prev := Snapshot{"A": "stale"}
	sticky := marker.NewSet("A")
	fetched := []order.Order{a}

	Reconcile(prev, sticky, fetched)

	if prev["A"] != "stale" || !sticky.Has("A") || fetched[0].Altered {
		t.Fatalf("expected inputs untouched")
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	prev := Snapshot{"A": signature.Of(newOrder("A", 10, order.StatusPending))}
	fetched := []order.Order{newOrder("A", 11, order.StatusPending), newOrder("B", 3, order.StatusPicked)}

	first := Reconcile(prev, marker.Set{}, fetched)
	second := Reconcile(prev, first.Sticky, fetched)

	for i := range first.Orders {
		if first.Orders[i].Altered != second.Orders[i].Altered {
			t.Fatalf("expected same flags on rerun for %s", first.Orders[i].ID)
		}
	}
}

func TestReconcileKeepsFetchOrder(t *testing.T) {
	t.Parallel()

	fetched := []order.Order{newOrder("C", 1, order.StatusPending), newOrder("A", 1, order.StatusPending), newOrder("B", 1, order.StatusPending)}
	res := Reconcile(Snapshot{}, marker.Set{}, fetched)
	for i, id := range []string{"C", "A", "B"} {
		if res.Orders[i].ID != id {
			t.Fatalf("expected %s at %d, got %s", id, i, res.Orders[i].ID)
		}
	}
}

func TestTrackerPersistsAndReloads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := marker.NewMemoryKV()
	store := marker.NewStore(kv, logger.NewNop())

	tr := NewTracker(ctx, "1", store, logger.NewNop())
	tr.Apply(ctx, []order.Order{newOrder("A", 10, order.StatusPending)})
	tr.Apply(ctx, []order.Order{newOrder("A", 12, order.StatusPending)})

	if got := store.Load(ctx, "1"); !got.Has("A") {
		t.Fatalf("expected A persisted, got %v", got.Sorted())
	}

	// a restarted dashboard keeps the highlight on first sight
	restarted := NewTracker(ctx, "1", store, logger.NewNop())
	res := restarted.Apply(ctx, []order.Order{newOrder("A", 12, order.StatusPending)})
	if !find(t, res.Orders, "A").Altered {
		t.Fatalf("expected persisted marker to survive restart")
	}
}

func TestTrackerReloadsWhenEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := marker.NewStore(marker.NewMemoryKV(), logger.NewNop())

	tr := NewTracker(ctx, "1", store, logger.NewNop())
	// another instance writes after this one started
	store.Save(ctx, "1", marker.NewSet("B"))

	res := tr.Apply(ctx, []order.Order{newOrder("B", 5, order.StatusPending)})
	if !find(t, res.Orders, "B").Altered {
		t.Fatalf("expected marker from shared storage to be picked up")
	}
}

func TestTrackerAcknowledgeAndFlag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := marker.NewStore(marker.NewMemoryKV(), logger.NewNop())
	tr := NewTracker(ctx, "1", store, logger.NewNop())

	tr.Flag(ctx, "A")
	if !store.Load(ctx, "1").Has("A") || !tr.Sticky().Has("A") {
		t.Fatalf("expected flag persisted")
	}

	tr.Acknowledge(ctx, "A")
	if store.Load(ctx, "1").Has("A") || tr.Sticky().Has("A") {
		t.Fatalf("expected acknowledge persisted")
	}
}

func TestEndToEndChangeThenAcknowledge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := marker.NewStore(marker.NewMemoryKV(), logger.NewNop())
	tr := NewTracker(ctx, "1", store, logger.NewNop())

	tr.Apply(ctx, []order.Order{newOrder("100", 10, order.StatusPending)})
	res := tr.Apply(ctx, []order.Order{newOrder("100", 12.5, order.StatusPending)})

	if !find(t, res.Orders, "100").Altered || !res.Sticky.Has("100") {
		t.Fatalf("expected 100 altered and sticky")
	}
	if !tr.RecentlyChanged().Has("100") {
		t.Fatalf("expected 100 recently changed")
	}

	tr.Acknowledge(ctx, "100")
	res = tr.Apply(ctx, []order.Order{newOrder("100", 12.5, order.StatusPicked)})
	if find(t, res.Orders, "100").Altered || len(tr.Sticky()) != 0 {
		t.Fatalf("expected 100 clear after acknowledge, sticky=%v", tr.Sticky().Sorted())
	}
}
