package entity

// Supermarket is a tenant row.
type Supermarket struct {
	ID            string `gorm:"column:id;primaryKey;type:varchar(64)"`
	Name          string `gorm:"column:nome;type:varchar(128);not null"`
	WhatsappToken string `gorm:"column:whatsapp_token;type:varchar(255)"`
}

// TableName binds the model to the supermarkets table.
func (Supermarket) TableName() string {
	return "supermarkets"
}
