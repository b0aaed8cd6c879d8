package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is a purchasable configuration of a product.
type ProductVariant struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Name         string          `gorm:"column:name;not null"`
	PaperType    string          `gorm:"column:paper_type;not null;default:''"`
	PricePerUnit decimal.Decimal `gorm:"column:price_per_unit;type:numeric(10,2);not null"`
}
