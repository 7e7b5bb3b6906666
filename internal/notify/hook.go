package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/tenant"
	"github.com/samuelwildary2025/aimerc-dashboard3/pkg/logger"
)

// TenantDirectory resolves a tenant's notification token.
type TenantDirectory interface {
	Get(ctx context.Context, tenantID string) (tenant.Tenant, error)
}

// Hook notifies the customer after a transition into picked or delivered.
// Orders without a phone and tenants without a token are skipped silently.
type Hook struct {
	tenantID string
	tenants  TenantDirectory
	gateway  Gateway
	logger   logger.Logger
}

// NewHook creates a Hook. tenantID is used for orders that carry none.
func NewHook(tenantID string, tenants TenantDirectory, gateway Gateway, log logger.Logger) *Hook {
	return &Hook{
		tenantID: tenantID,
		tenants:  tenants,
		gateway:  gateway,
		logger:   log,
	}
}

// AfterTransition implements workflow.Hook.
func (h *Hook) AfterTransition(ctx context.Context, o order.Order, _, to order.Status) error {
	text, ok := Message(o, to)
	if !ok {
		return nil
	}

	phone := NormalizePhone(o.Phone)
	if phone == "" {
		h.logger.Debugf(ctx, "[Notify] Order has no phone, skipping")
		return nil
	}

	tenantID := o.TenantID
	if tenantID == "" {
		tenantID = h.tenantID
	}
	t, err := h.tenants.Get(ctx, tenantID)
	if errors.Is(err, tenant.ErrTenantNotFound) {
		h.logger.Debugf(ctx, "[Notify] Tenant %s unknown, skipping", tenantID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve tenant %s: %w", tenantID, err)
	}
	if !t.CanNotify() {
		h.logger.Debugf(ctx, "[Notify] Tenant %s has no token, skipping", tenantID)
		return nil
	}

	if err := h.gateway.Send(ctx, phone, text, t.NotificationToken); err != nil {
		return fmt.Errorf("send %s notification: %w", to, err)
	}

	h.logger.Infof(ctx, "[Notify] Sent %s notification", to)
	return nil
}
