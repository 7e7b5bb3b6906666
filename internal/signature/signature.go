// Package signature fingerprints the customer-visible content of an order.
package signature

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/samuelwildary2025/aimerc-dashboard3/internal/domain/order"
)

// canonical is the hashed shape. Field order is fixed by the struct and
// status is excluded.
type canonical struct {
	Note          string          `json:"obs"`
	CustomerName  string          `json:"nome_cliente"`
	PaymentMethod string          `json:"forma"`
	Address       string          `json:"endereco"`
	Phone         string          `json:"telefone"`
	Items         []canonicalItem `json:"itens"`
	Total         string          `json:"total"`
}

type canonicalItem struct {
	Name      string `json:"nome"`
	Quantity  string `json:"qtd"`
	UnitPrice string `json:"preco"`
}

// Of returns the signature of o. Equal content yields equal signatures
// regardless of item order or status.
func Of(o order.Order) string {
	sorted := make([]order.LineItem, len(o.Items))
	copy(sorted, o.Items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Quantity != b.Quantity {
			return a.Quantity < b.Quantity
		}
		return a.UnitPrice < b.UnitPrice
	})

	items := make([]canonicalItem, 0, len(sorted))
	for _, it := range sorted {
		items = append(items, canonicalItem{
			Name:      it.Name,
			Quantity:  number(it.Quantity),
			UnitPrice: number(it.UnitPrice),
		})
	}

	body, err := json.Marshal(canonical{
		Note:          o.Note,
		CustomerName:  o.CustomerName,
		PaymentMethod: o.PaymentMethod,
		Address:       o.Address,
		Phone:         o.Phone,
		Items:         items,
		Total:         number(o.Total),
	})
	if err != nil {
		// only strings go in, so Marshal cannot fail
		panic(err)
	}

	return fmt.Sprintf("%016x", xxhash.Sum64(body))
}

// number renders floats in their shortest exact form so 12.5 and 12.50
// upstream hash the same.
func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
