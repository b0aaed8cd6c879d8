package models

import (
	"time"

	"github.com/google/uuid"
)

// Seller extends a Profile with storefront details. The id matches the
// owning Profile id.
type Seller struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyName    string    `gorm:"column:company_name;not null"`
	Description    string    `gorm:"column:description;not null;default:''"`
	LogoURL        *string   `gorm:"column:logo_url"`
	ShippingPolicy string    `gorm:"column:shipping_policy;not null;default:''"`
	ReturnPolicy   string    `gorm:"column:return_policy;not null;default:''"`
	Profile        *Profile  `gorm:"foreignKey:ID;references:ID"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
