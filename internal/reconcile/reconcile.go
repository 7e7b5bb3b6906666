// Package reconcile compares each freshly fetched order batch against the
// previously observed one and decides which orders are shown as altered.
package reconcile

import (
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/marker"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/signature"
)

// Snapshot maps order id to the signature last observed for it.
type Snapshot map[string]string

// Result is the outcome of one reconciliation pass.
type Result struct {
	// Orders is the fetched batch, in fetch order, with Altered set.
	Orders []order.Order
	// Snapshot replaces the previous snapshot wholesale.
	Snapshot Snapshot
	// Sticky is the updated marker set.
	Sticky marker.Set
	// RecentlyChanged holds ids whose signature diverged in this pass only.
	RecentlyChanged marker.Set
}

// Reconcile runs one pass. The Altered field of each fetched order is read as
// the upstream hint. prev and sticky are not modified.
func Reconcile(prev Snapshot, sticky marker.Set, fetched []order.Order) Result {
	res := Result{
		Orders:          make([]order.Order, 0, len(fetched)),
		Snapshot:        make(Snapshot, len(fetched)),
		Sticky:          sticky.Clone(),
		RecentlyChanged: marker.Set{},
	}

	for _, o := range fetched {
		sig := signature.Of(o)

		last, seen := prev[o.ID]
		changed := seen && last != sig
		serverFlag := o.Altered

		switch {
		case o.Status.IsTerminal():
			res.Sticky.Remove(o.ID)
		case changed || serverFlag:
			res.Sticky.Add(o.ID)
		}

		flagged := o.Clone()
		flagged.Altered = res.Sticky.Has(o.ID) || changed || serverFlag
		res.Orders = append(res.Orders, flagged)

		res.Snapshot[o.ID] = sig
		if changed {
			res.RecentlyChanged.Add(o.ID)
		}
	}

	return res
}
