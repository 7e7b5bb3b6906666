// Package workflow moves orders through pending, picked, delivered and
// invoiced, and applies local content edits. Both operations update the
// caller's order optimistically and persist a full replacement record.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

var (
	// ErrPersist wraps a store failure. The local order keeps the
	// optimistic change.
	ErrPersist = errors.New("order store rejected the update")
	// ErrHook wraps post-transition side-effect failures. The transition
	// itself succeeded.
	ErrHook = errors.New("post-transition hook failed")
)

// Store is the slice of the order repository the workflow needs.
type Store interface {
	Update(ctx context.Context, orderID string, payload order.Payload) (order.Order, error)
}

// Markers is the slice of the reconciliation tracker the workflow needs.
type Markers interface {
	Acknowledge(ctx context.Context, orderID string)
	Flag(ctx context.Context, orderID string)
}

// Hook runs after a successful status transition.
type Hook interface {
	AfterTransition(ctx context.Context, o order.Order, from, to order.Status) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, o order.Order, from, to order.Status) error

// AfterTransition calls f.
func (f HookFunc) AfterTransition(ctx context.Context, o order.Order, from, to order.Status) error {
	return f(ctx, o, from, to)
}

// Edit is a content correction on a pending order.
type Edit struct {
	Items []order.LineItem
	// Note replaces the order note when non-nil.
	Note *string
}

// Machine applies workflow operations for one tenant.
type Machine struct {
	tenantID string
	store    Store
	markers  Markers
	hooks    []Hook
	logger   logger.Logger
}

// NewMachine creates a Machine. Hooks run in order after each successful
// transition.
func NewMachine(tenantID string, store Store, markers Markers, log logger.Logger, hooks ...Hook) *Machine {
	return &Machine{
		tenantID: tenantID,
		store:    store,
		markers:  markers,
		hooks:    hooks,
		logger:   log,
	}
}

// Transition moves o forward to "to". A backward or same-status move returns
// order.ErrInvalidTransition and leaves o untouched. Otherwise o ends up in
// status "to" with Altered cleared, even when the store rejects the update.
func (m *Machine) Transition(ctx context.Context, o *order.Order, to order.Status) error {
	ctx = logger.WithOrderID(ctx, o.ID)
	from := o.Status

	if err := order.ValidateTransition(from, to); err != nil {
		return err
	}

	// 1. persist the full record with the new status
	payload := order.BuildPayload(*o, to, m.tenantID)
	_, err := m.store.Update(ctx, o.ID, payload)

	// 2. apply locally either way
	o.Status = to
	o.Altered = false

	if err != nil {
		m.logger.Warnf(ctx, "[Workflow] Transition %s -> %s not persisted: %v", from, to, err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	// 3. the user has seen and acted on the order
	m.markers.Acknowledge(ctx, o.ID)

	m.logger.Infof(ctx, "[Workflow] Transition %s -> %s", from, to)

	// 4. side effects never roll back the transition
	var hookErr error
	for _, h := range m.hooks {
		hookErr = multierr.Append(hookErr, h.AfterTransition(ctx, o.Clone(), from, to))
	}
	if hookErr != nil {
		m.logger.Warnf(ctx, "[Workflow] Hooks failed after %s -> %s: %v", from, to, hookErr)
		return fmt.Errorf("%w: %w", ErrHook, hookErr)
	}

	return nil
}

// EditContent replaces the items (and optionally the note) of a pending
// order. The order is flagged as altered before the store is called, and the
// local edit is kept if the store rejects it.
func (m *Machine) EditContent(ctx context.Context, o *order.Order, edit Edit) error {
	ctx = logger.WithOrderID(ctx, o.ID)

	if o.Status != order.StatusPending {
		return fmt.Errorf("%w: order %s is %s", order.ErrNotEditable, o.ID, o.Status)
	}

	// 1. local edit
	if err := o.ReplaceItems(edit.Items); err != nil {
		return err
	}
	if edit.Note != nil {
		o.Note = *edit.Note
	}
	o.Altered = true
	m.markers.Flag(ctx, o.ID)

	// 2. persist
	stored, err := m.store.Update(ctx, o.ID, order.BuildPayload(*o, o.Status, m.tenantID))
	if err != nil {
		m.logger.Warnf(ctx, "[Workflow] Edit not persisted: %v", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	// 3. the store is authoritative for everything it returned
	merged := order.Merge(*o, stored)
	merged.Altered = true
	*o = merged

	m.logger.Infof(ctx, "[Workflow] Edited %d items, total %.2f", len(o.Items), o.Total)
	return nil
}
