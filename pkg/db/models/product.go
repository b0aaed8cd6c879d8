package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents a seller listing with its variants and FAQs.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID        `gorm:"column:seller_id;type:uuid;not null;index"`
	CategoryID  uuid.UUID        `gorm:"column:category_id;type:uuid;not null"`
	Name        string           `gorm:"column:name;not null"`
	Description string           `gorm:"column:description;not null;default:''"`
	MinOrderQty int              `gorm:"column:min_order_quantity;not null;default:1"`
	Images      pq.StringArray   `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	Seller      *Seller          `gorm:"foreignKey:SellerID"`
	Category    *Category        `gorm:"foreignKey:CategoryID"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	FAQs        []ProductFAQ     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
