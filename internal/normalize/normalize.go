// Package normalize folds the order store's two field naming schemes into the
// canonical order.Order. It is the only place that knows about either scheme.
// Nothing here fails: malformed fields degrade to zero or empty values.
package normalize

import (
	"time"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
)

// Raw is one decoded JSON object from the order store.
type Raw map[string]interface{}

var (
	customerKeys = []string{"cliente_nome", "nome_cliente", "client_name"}
	phoneKeys    = []string{"telefone", "phone"}
	addressKeys  = []string{"endereco", "address"}
	paymentKeys  = []string{"forma", "payment_method"}
	noteKeys     = []string{"observacao", "observacoes"}
	itemsKeys    = []string{"itens", "items"}
	totalKeys    = []string{"valor_total", "total"}
	createdKeys  = []string{"data_pedido", "created_at", "updated_at"}

	itemNameKeys  = []string{"nome_produto", "product_name"}
	itemQtyKeys   = []string{"quantidade", "quantity"}
	itemPriceKeys = []string{"preco_unitario", "unit_price"}
)

// Orders normalizes a batch. A bad record never drops the rest of the batch.
func Orders(raws []Raw) []order.Order {
	out := make([]order.Order, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Order(raw))
	}
	return out
}

// Order normalizes a single record.
func Order(raw Raw) order.Order {
	items := Items(first(raw, itemsKeys...))

	o := order.Order{
		ID:            String(raw["id"]),
		Number:        String(raw["numero_pedido"]),
		TenantID:      String(raw["supermarket_id"]),
		CustomerName:  String(first(raw, customerKeys...)),
		Phone:         String(first(raw, phoneKeys...)),
		Address:       String(first(raw, addressKeys...)),
		PaymentMethod: String(first(raw, paymentKeys...)),
		Note:          String(first(raw, noteKeys...)),
		Items:         items,
		CreatedAt:     Time(first(raw, createdKeys...)),
		Altered:       Bool(raw["foi_alterado"]),
	}

	if total, ok := lookup(raw, totalKeys...); ok {
		o.Total = Number(total)
	} else {
		o.Total = order.ComputeTotal(items)
	}

	if st, err := order.ParseStatus(String(raw["status"])); err == nil {
		o.Status = st
	} else {
		o.Status = order.Status(String(raw["status"]))
	}

	return o
}

// Items normalizes an item list; anything that is not a list yields nil.
func Items(v interface{}) []order.LineItem {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}

	items := make([]order.LineItem, 0, len(list))
	for _, entry := range list {
		m, ok := asMap(entry)
		if !ok {
			continue
		}
		items = append(items, order.LineItem{
			ID:        String(m["id"]),
			Name:      String(first(m, itemNameKeys...)),
			Quantity:  Number(first(m, itemQtyKeys...)),
			UnitPrice: Number(first(m, itemPriceKeys...)),
		})
	}
	return items
}

// first returns the value of the first key that is present and non-null.
func first(raw Raw, keys ...string) interface{} {
	v, _ := lookup(raw, keys...)
	return v
}

func lookup(raw Raw, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func asMap(v interface{}) (Raw, bool) {
	switch m := v.(type) {
	case Raw:
		return m, true
	case map[string]interface{}:
		return Raw(m), true
	default:
		return nil, false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time parses the timestamp formats the store emits; zero on failure.
func Time(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}
