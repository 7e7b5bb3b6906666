package order

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotEditable       = errors.New("order content can only be edited while pending")
	ErrUnknownStatus     = errors.New("unknown order status")
)

// TotalTolerance is how far a stored total may drift from Σ(quantity × unit price).
const TotalTolerance = 0.005

// Order is the canonical order record. Every upstream naming scheme is folded
// into this shape at the boundary (see package normalize).
type Order struct {
	ID            string
	Number        string
	TenantID      string
	CustomerName  string
	Phone         string
	Address       string
	PaymentMethod string
	Note          string
	Items         []LineItem
	Total         float64
	Status        Status
	CreatedAt     time.Time

	// Altered is derived by reconciliation; upstream may also send it as a hint.
	Altered bool
}

// LineItem is owned by its order and replaced wholesale on edit.
type LineItem struct {
	ID        string
	Name      string
	Quantity  float64
	UnitPrice float64
}

// ComputeTotal sums quantity × unit price over items.
func ComputeTotal(items []LineItem) float64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Quantity).Mul(decimal.NewFromFloat(it.UnitPrice)))
	}
	return toFloat(sum)
}

// TotalsAgree reports whether two totals are equal within TotalTolerance.
func TotalsAgree(a, b float64) bool {
	return math.Abs(a-b) <= TotalTolerance
}

// PayloadTotal is the total sent upstream: computed from items, or the
// previously known total when there are no items.
func (o Order) PayloadTotal() float64 {
	if len(o.Items) == 0 {
		return o.Total
	}
	return ComputeTotal(o.Items)
}

// DisplayNumber is the number shown to customers; falls back to the id.
func (o Order) DisplayNumber() string {
	if o.Number != "" {
		return o.Number
	}
	return o.ID
}

// Clone deep-copies the order so item slices are never shared.
func (o Order) Clone() Order {
	if o.Items != nil {
		items := make([]LineItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}

// ApplyStatus moves the order to status "to" if the workflow allows it.
func (o *Order) ApplyStatus(to Status) error {
	if err := ValidateTransition(o.Status, to); err != nil {
		return err
	}
	o.Status = to
	return nil
}

// ReplaceItems swaps the item list and recomputes the total.
func (o *Order) ReplaceItems(items []LineItem) error {
	if o.Status != StatusPending {
		return fmt.Errorf("%w: order %s is %s", ErrNotEditable, o.ID, o.Status)
	}
	replaced := make([]LineItem, len(items))
	copy(replaced, items)
	o.Items = replaced
	o.Total = ComputeTotal(replaced)
	return nil
}

// Merge overlays the authoritative upstream record onto the local one. Empty
// upstream fields keep the local value.
func Merge(local, remote Order) Order {
	merged := local.Clone()
	if remote.Number != "" {
		merged.Number = remote.Number
	}
	if remote.TenantID != "" {
		merged.TenantID = remote.TenantID
	}
	if remote.CustomerName != "" {
		merged.CustomerName = remote.CustomerName
	}
	if remote.Phone != "" {
		merged.Phone = remote.Phone
	}
	if remote.Address != "" {
		merged.Address = remote.Address
	}
	if remote.PaymentMethod != "" {
		merged.PaymentMethod = remote.PaymentMethod
	}
	if remote.Note != "" {
		merged.Note = remote.Note
	}
	if len(remote.Items) > 0 {
		merged.Items = remote.Clone().Items
		merged.Total = remote.Total
	}
	if remote.Status != "" {
		merged.Status = remote.Status
	}
	if !remote.CreatedAt.IsZero() {
		merged.CreatedAt = remote.CreatedAt
	}
	return merged
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
