package rporder

import (
	"context"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
)

// OrderRepository is the authoritative order store.
type OrderRepository interface {
	// List returns every order of the tenant in store order.
	List(ctx context.Context, tenantID string) ([]order.Order, error)

	// Update replaces the whole record with payload and returns the stored result.
	Update(ctx context.Context, orderID string, payload order.Payload) (order.Order, error)
}
