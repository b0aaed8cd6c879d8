package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one purchased product variant within an order.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	VariantID  uuid.UUID       `gorm:"column:variant_id;type:uuid;not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	ArtworkURL *string         `gorm:"column:artwork_url"`
	Product    *Product        `gorm:"foreignKey:ProductID"`
}
