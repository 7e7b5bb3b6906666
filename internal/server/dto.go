package server

import (
	"time"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/views"
	"github.com/samuelwildary2025/aimerc-dashboard3/internal/workflow"
)

// TransitionRequest moves an order to the next status.
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// EditItemsRequest replaces the items, and optionally the note, of a
// pending order.
type EditItemsRequest struct {
	Items []ItemRequest `json:"items" binding:"required,min=1,dive"`
	Note  *string       `json:"observacao"`
}

// ItemRequest is one corrected line item.
type ItemRequest struct {
	ID          string  `json:"id"`
	ProductName string  `json:"product_name" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"gte=0"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
}

// ToEdit converts the request to a workflow edit.
func (r *EditItemsRequest) ToEdit() workflow.Edit {
	items := make([]order.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, order.LineItem{
			ID:        it.ID,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return workflow.Edit{Items: items, Note: r.Note}
}

// OrderResponse is an order as the panel renders it.
type OrderResponse struct {
	ID            string         `json:"id"`
	Number        string         `json:"numero_pedido"`
	TenantID      string         `json:"supermarket_id,omitempty"`
	ClientName    string         `json:"client_name"`
	Phone         string         `json:"phone,omitempty"`
	Address       string         `json:"address,omitempty"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	Note          string         `json:"observacao,omitempty"`
	Items         []ItemResponse `json:"items"`
	Total         float64        `json:"total"`
	Status        string         `json:"status"`
	CreatedAt     *time.Time     `json:"created_at,omitempty"`
	Altered       bool           `json:"altered"`
}

// ItemResponse is a line item.
type ItemResponse struct {
	ID          string  `json:"id,omitempty"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// CardResponse is a pending order in the picking lane.
type CardResponse struct {
	Order      *OrderResponse `json:"order"`
	CanAdvance bool           `json:"can_advance"`
}

// PageResponse is a page of the completed column.
type PageResponse struct {
	Day        string           `json:"day"`
	Orders     []*OrderResponse `json:"orders"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
	Total      int              `json:"total"`
}

// StatsResponse are the day's headline numbers.
type StatsResponse struct {
	Day       string  `json:"day"`
	Total     int     `json:"total"`
	Pending   int     `json:"pending"`
	Picked    int     `json:"picked"`
	Completed int     `json:"completed"`
	Revenue   float64 `json:"revenue"`
}

// BoardResponse is the full visible list.
type BoardResponse struct {
	Orders          []*OrderResponse `json:"orders"`
	RecentlyChanged []string         `json:"recently_changed"`
	UpdatedAt       *time.Time       `json:"updated_at,omitempty"`
}

// FromOrder converts a domain order.
func FromOrder(o order.Order) *OrderResponse {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemResponse{
			ID:          it.ID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	resp := &OrderResponse{
		ID:            o.ID,
		Number:        o.DisplayNumber(),
		TenantID:      o.TenantID,
		ClientName:    o.CustomerName,
		Phone:         o.Phone,
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
		Note:          o.Note,
		Items:         items,
		Total:         o.Total,
		Status:        o.Status.String(),
		Altered:       o.Altered,
	}
	if !o.CreatedAt.IsZero() {
		t := o.CreatedAt
		resp.CreatedAt = &t
	}
	return resp
}

// FromOrders converts a list.
func FromOrders(orders []order.Order) []*OrderResponse {
	out := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o))
	}
	return out
}

// FromCards converts the picking lane.
func FromCards(cards []views.Card) []*CardResponse {
	out := make([]*CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, &CardResponse{Order: FromOrder(c.Order), CanAdvance: c.CanAdvance})
	}
	return out
}

// FromPage converts a completed page.
func FromPage(p views.Page) *PageResponse {
	return &PageResponse{
		Day:        p.Day,
		Orders:     FromOrders(p.Orders),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
		Total:      p.Total,
	}
}

// FromStats converts day stats.
func FromStats(s views.Stats) *StatsResponse {
	return &StatsResponse{
		Day:       s.Day,
		Total:     s.Total,
		Pending:   s.Pending,
		Picked:    s.Picked,
		Completed: s.Completed,
		Revenue:   s.Revenue,
	}
}
