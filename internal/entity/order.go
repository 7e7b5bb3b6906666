package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Order is the order row. Items are a JSON array whose elements may use
// either the Portuguese or the English field names.
type Order struct {
	ID            string  `gorm:"column:id;primaryKey;type:varchar(64)"`
	Number        string  `gorm:"column:numero_pedido;type:varchar(32)"`
	SupermarketID string  `gorm:"column:supermarket_id;type:varchar(64);not null;index:idx_supermarket_status"`
	ClientName    string  `gorm:"column:cliente_nome;type:varchar(128)"`
	Phone         string  `gorm:"column:telefone;type:varchar(32)"`
	Address       string  `gorm:"column:endereco;type:varchar(255)"`
	PaymentMethod string  `gorm:"column:forma;type:varchar(32)"`
	Note          string  `gorm:"column:observacao;type:text"`
	Total         float64 `gorm:"column:valor_total;type:decimal(12,2)"`

	Items datatypes.JSON `gorm:"column:itens;type:json"`

	Status  string `gorm:"column:status;type:varchar(16);not null;default:'pendente';index:idx_supermarket_status"`
	Altered bool   `gorm:"column:foi_alterado;not null;default:false"`

	CreatedAt time.Time `gorm:"column:data_pedido;not null;index:idx_data_pedido"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName binds the model to the pedidos table.
func (Order) TableName() string {
	return "pedidos"
}
