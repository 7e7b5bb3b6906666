package rporder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/entity"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/normalize"
)

// OrderRepositoryImpl is the MySQL OrderRepository.
type OrderRepositoryImpl struct {
	db *gorm.DB
}

// NewOrderRepository creates an OrderRepository on db.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

// List returns the tenant's orders oldest first (data_pedido, then id).
func (r *OrderRepositoryImpl) List(ctx context.Context, tenantID string) ([]order.Order, error) {
	var pos []entity.Order

	query := r.db.WithContext(ctx).Model(&entity.Order{})
	if tenantID != "" {
		query = query.Where("supermarket_id = ?", tenantID)
	}
	if err := query.Order("data_pedido ASC, id ASC").Find(&pos).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := make([]order.Order, 0, len(pos))
	for i := range pos {
		orders = append(orders, toDomainModel(&pos[i]))
	}
	return orders, nil
}

// Update writes every column from payload, then re-reads the row.
func (r *OrderRepositoryImpl) Update(ctx context.Context, orderID string, payload order.Payload) (order.Order, error) {
	updates, err := toUpdates(payload, time.Now())
	if err != nil {
		return order.Order{}, err
	}

	if err := r.db.WithContext(ctx).
		Model(&entity.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error; err != nil {
		return order.Order{}, fmt.Errorf("update order %s: %w", orderID, err)
	}

	// RowsAffected is 0 for a no-op update on MySQL, so existence is checked by reading back
	var po entity.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order.Order{}, fmt.Errorf("%w: %s", order.ErrOrderNotFound, orderID)
		}
		return order.Order{}, fmt.Errorf("reload order %s: %w", orderID, err)
	}

	return toDomainModel(&po), nil
}

// toUpdates renders a full replacement. Absent optional fields clear the column.
func toUpdates(p order.Payload, now time.Time) (map[string]interface{}, error) {
	itemsJSON, err := json.Marshal(p.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}

	note := deref(p.Note)
	if note == "" {
		note = deref(p.Notes)
	}

	updates := map[string]interface{}{
		"cliente_nome":   p.ClientName,
		"valor_total":    p.Total,
		"status":         string(p.Status),
		"itens":          datatypes.JSON(itemsJSON),
		"telefone":       deref(p.Phone),
		"endereco":       deref(p.Address),
		"forma":          deref(p.PaymentMethod),
		"observacao":     note,
		"supermarket_id": p.TenantID,
		"foi_alterado":   false,
		"updated_at":     now,
	}
	if p.CreatedAt != nil {
		updates["data_pedido"] = *p.CreatedAt
	}
	return updates, nil
}

// toDomainModel converts a row. Item decoding goes through normalize so
// rows written by either client read the same.
func toDomainModel(po *entity.Order) order.Order {
	var rawItems interface{}
	if len(po.Items) > 0 {
		if err := json.Unmarshal(po.Items, &rawItems); err != nil {
			rawItems = nil
		}
	}

	return normalize.Order(normalize.Raw{
		"id":             po.ID,
		"numero_pedido":  po.Number,
		"supermarket_id": po.SupermarketID,
		"cliente_nome":   po.ClientName,
		"telefone":       po.Phone,
		"endereco":       po.Address,
		"forma":          po.PaymentMethod,
		"observacao":     po.Note,
		"itens":          rawItems,
		"valor_total":    po.Total,
		"status":         po.Status,
		"foi_alterado":   po.Altered,
		"data_pedido":    po.CreatedAt,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
