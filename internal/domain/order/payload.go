package order

import "time"

// Payload is the full replacement body sent to the order store. It always
// carries every field so the store never silently drops one.
type Payload struct {
	ClientName    string        `json:"client_name"`
	Total         float64       `json:"total"`
	Status        Status        `json:"status"`
	CreatedAt     *time.Time    `json:"created_at"`
	Items         []PayloadItem `json:"items"`
	Phone         *string       `json:"telefone"`
	Address       *string       `json:"address"`
	PaymentMethod *string       `json:"payment_method"`
	Note          *string       `json:"observacao"`
	Notes         *string       `json:"observacoes"`
	TenantID      string        `json:"supermarket_id"`
}

// PayloadItem is a line item in the store's English naming scheme.
type PayloadItem struct {
	ID          string  `json:"id,omitempty"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

const (
	defaultClientName = "Cliente"
	defaultItemName   = "Item"
)

// BuildPayload renders o as a full replacement with status "status".
// fallbackTenant is used when the order does not carry its own tenant.
func BuildPayload(o Order, status Status, fallbackTenant string) Payload {
	items := make([]PayloadItem, 0, len(o.Items))
	for _, it := range o.Items {
		name := it.Name
		if name == "" {
			name = defaultItemName
		}
		items = append(items, PayloadItem{
			ID:          it.ID,
			ProductName: name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	clientName := o.CustomerName
	if clientName == "" {
		clientName = defaultClientName
	}

	tenantID := o.TenantID
	if tenantID == "" {
		tenantID = fallbackTenant
	}

	var createdAt *time.Time
	if !o.CreatedAt.IsZero() {
		t := o.CreatedAt
		createdAt = &t
	}

	return Payload{
		ClientName:    clientName,
		Total:         o.PayloadTotal(),
		Status:        status,
		CreatedAt:     createdAt,
		Items:         items,
		Phone:         optional(o.Phone),
		Address:       optional(o.Address),
		PaymentMethod: optional(o.PaymentMethod),
		Note:          optional(o.Note),
		Notes:         optional(o.Note),
		TenantID:      tenantID,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
