// Package views derives the dashboard columns from the reconciled order list.
// Every function is pure and returns fresh slices.
package views

import (
	"sort"
	"time"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
)

// DefaultPageSize is the completed column page size.
const DefaultPageSize = 15

// DayLayout is the calendar day format used by filters.
const DayLayout = "2006-01-02"

// Card is a pending order as shown in the picking lane.
type Card struct {
	Order order.Order
	// CanAdvance is true only for the head of the lane.
	CanAdvance bool
}

// Pending returns pending orders in fetch order. Only the first may be
// advanced to picked; the rest can only be printed.
func Pending(orders []order.Order) []Card {
	cards := make([]Card, 0)
	for _, o := range orders {
		if o.Status != order.StatusPending {
			continue
		}
		cards = append(cards, Card{Order: o, CanAdvance: len(cards) == 0})
	}
	return cards
}

// Head returns the pending order allowed to advance.
func Head(orders []order.Order) (order.Order, bool) {
	for _, o := range orders {
		if o.Status == order.StatusPending {
			return o, true
		}
	}
	return order.Order{}, false
}

// Picked returns picked orders in fetch order.
func Picked(orders []order.Order) []order.Order {
	return filter(orders, func(o order.Order) bool { return o.Status == order.StatusPicked })
}

// Completed returns delivered and invoiced orders, newest first. Orders with
// the same timestamp keep their fetch order.
func Completed(orders []order.Order) []order.Order {
	done := filter(orders, func(o order.Order) bool { return o.Status.IsCompleted() })
	sort.SliceStable(done, func(i, j int) bool {
		return done[i].CreatedAt.After(done[j].CreatedAt)
	})
	return done
}

// DayKey is the tenant-local calendar day of t.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// FilterDay keeps orders created on day (YYYY-MM-DD) in loc.
func FilterDay(orders []order.Order, day string, loc *time.Location) []order.Order {
	return filter(orders, func(o order.Order) bool {
		return !o.CreatedAt.IsZero() && DayKey(o.CreatedAt, loc) == day
	})
}

// Page is one page of a list.
type Page struct {
	Day        string
	Orders     []order.Order
	Page       int
	PageSize   int
	TotalPages int
	Total      int
}

// Paginate returns page (0-based) of orders, clamping page into range.
func Paginate(orders []order.Order, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := PageCount(len(orders), size)
	page = ClampPage(page, len(orders), size)

	start := page * size
	end := start + size
	if end > len(orders) {
		end = len(orders)
	}

	out := make([]order.Order, end-start)
	copy(out, orders[start:end])

	return Page{
		Orders:     out,
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Total:      len(orders),
	}
}

// PageCount is the number of pages for n items, at least 1.
func PageCount(n, size int) int {
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// ClampPage pulls page into [0, PageCount-1].
func ClampPage(page, n, size int) int {
	last := PageCount(n, size) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	return page
}

func filter(orders []order.Order, keep func(order.Order) bool) []order.Order {
	out := make([]order.Order, 0)
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}
