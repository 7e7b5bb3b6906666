// Package dashboard holds the visible order list of one tenant and routes
// user actions through the workflow.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/marker"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/views"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/workflow"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/infra/redis"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// ErrNotNextInLine rejects picking any pending order but the head of the lane.
var ErrNotNextInLine = errors.New("only the first pending order can be picked")

// ChangePublisher announces orders whose content changed.
type ChangePublisher interface {
	PublishOrdersChanged(ctx context.Context, event *redis.OrdersChanged) error
}

// Workflow is the subset of workflow.Machine the board drives.
type Workflow interface {
	Transition(ctx context.Context, o *order.Order, to order.Status) error
	EditContent(ctx context.Context, o *order.Order, edit workflow.Edit) error
}

// Options configures a Board.
type Options struct {
	TenantID string
	Location *time.Location
	PageSize int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Board is the last published order list plus local optimistic updates.
type Board struct {
	mu        sync.RWMutex
	orders    []order.Order
	recently  marker.Set
	updatedAt time.Time

	tenantID  string
	loc       *time.Location
	now       func() time.Time
	cursor    *views.Cursor
	workflow  Workflow
	publisher ChangePublisher
	logger    logger.Logger
}

// NewBoard creates an empty Board. publisher may be nil.
func NewBoard(opts Options, wf Workflow, publisher ChangePublisher, log logger.Logger) *Board {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PageSize <= 0 {
		opts.PageSize = views.DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Board{
		recently:  marker.Set{},
		tenantID:  opts.TenantID,
		loc:       opts.Location,
		now:       opts.Now,
		cursor:    views.NewCursor(opts.Location, opts.PageSize, opts.Now()),
		workflow:  wf,
		publisher: publisher,
		logger:    log,
	}
}

// Publish replaces the visible list. Implements poller.Sink.
func (b *Board) Publish(ctx context.Context, orders []order.Order, recentlyChanged marker.Set) {
	list := make([]order.Order, len(orders))
	for i, o := range orders {
		list[i] = o.Clone()
	}

	b.mu.Lock()
	b.orders = list
	b.recently = recentlyChanged.Clone()
	b.updatedAt = b.now()
	b.mu.Unlock()

	if len(recentlyChanged) == 0 || b.publisher == nil {
		return
	}
	event := &redis.OrdersChanged{
		TenantID:  b.tenantID,
		OrderIDs:  recentlyChanged.Sorted(),
		Timestamp: b.now().Unix(),
	}
	if err := b.publisher.PublishOrdersChanged(ctx, event); err != nil {
		b.logger.Warnf(ctx, "[Board] Publish change event failed: %v", err)
	}
}

// Orders returns a copy of the visible list.
func (b *Board) Orders() []order.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]order.Order, len(b.orders))
	for i, o := range b.orders {
		out[i] = o.Clone()
	}
	return out
}

// RecentlyChanged returns the ids changed in the last published cycle.
func (b *Board) RecentlyChanged() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.recently.Sorted()
}

// UpdatedAt is when the list was last published.
func (b *Board) UpdatedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.updatedAt
}

// Find returns the visible order with id.
func (b *Board) Find(id string) (order.Order, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, o := range b.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return order.Order{}, fmt.Errorf("%w: %s", order.ErrOrderNotFound, id)
}

// Transition advances order id to status "to". The returned order is the
// local state after the call, including when the store rejected it.
func (b *Board) Transition(ctx context.Context, id string, to order.Status) (order.Order, error) {
	o, err := b.Find(id)
	if err != nil {
		return order.Order{}, err
	}

	if o.Status == order.StatusPending && to == order.StatusPicked {
		if head, ok := views.Head(b.Orders()); ok && head.ID != o.ID {
			return o, fmt.Errorf("%w: next is %s", ErrNotNextInLine, head.ID)
		}
	}

	err = b.workflow.Transition(ctx, &o, to)
	if errors.Is(err, order.ErrInvalidTransition) {
		return o, err
	}
	b.replace(o)
	return o, err
}

// EditContent corrects the items and note of pending order id.
func (b *Board) EditContent(ctx context.Context, id string, edit workflow.Edit) (order.Order, error) {
	o, err := b.Find(id)
	if err != nil {
		return order.Order{}, err
	}

	err = b.workflow.EditContent(ctx, &o, edit)
	if errors.Is(err, order.ErrNotEditable) {
		return o, err
	}
	b.replace(o)
	return o, err
}

// replace writes a local update back. The next poll overwrites it with the
// store's view; the last write wins.
func (b *Board) replace(o order.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == o.ID {
			b.orders[i] = o.Clone()
			return
		}
	}
}

// Pending is the picking lane.
func (b *Board) Pending() []views.Card {
	return views.Pending(b.Orders())
}

// Picked is the picked column.
func (b *Board) Picked() []order.Order {
	return views.Picked(b.Orders())
}

// Today is the current tenant-local day.
func (b *Board) Today() string {
	return views.DayKey(b.now(), b.loc)
}

// Completed is the current page of the completed column. A non-empty day
// selects another day and restarts at page 0; a non-nil page selects a page.
// The page is clamped to what the selected day holds.
func (b *Board) Completed(day string, page *int) views.Page {
	if day != "" {
		b.cursor.SetDay(day)
	}
	if page != nil {
		b.cursor.SetPage(*page)
	}
	return b.cursor.View(b.Orders())
}

// Stats are the headline numbers for day (empty means today).
func (b *Board) Stats(day string) views.Stats {
	if day == "" {
		day = b.Today()
	}
	return views.DayStats(b.Orders(), day, b.loc)
}
