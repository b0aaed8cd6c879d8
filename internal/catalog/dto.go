package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
)

// ProductDTO is the flattened product payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID        `json:"id"`
	SellerID    uuid.UUID        `json:"seller_id"`
	SellerName  string           `json:"seller_name,omitempty"`
	CategoryID  uuid.UUID        `json:"category_id"`
	Category    string           `json:"category,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	MinOrderQty int              `json:"min_order_quantity"`
	Images      []string         `json:"images"`
	IsActive    bool             `json:"is_active"`
	Variants    []VariantDTO     `json:"variants"`
	FAQs        []FAQDTO         `json:"faqs,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// VariantDTO is one purchasable configuration.
type VariantDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	PaperType    string          `json:"paper_type,omitempty"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// FAQDTO is a question/answer pair.
type FAQDTO struct {
	ID       uuid.UUID `json:"id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
}

// CategoryDTO is a browsable product grouping.
type CategoryDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL *string   `json:"image_url,omitempty"`
}

// NewProductDTO flattens the persisted model and its preloaded associations.
func NewProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:          product.ID,
		SellerID:    product.SellerID,
		CategoryID:  product.CategoryID,
		Name:        product.Name,
		Description: product.Description,
		MinOrderQty: product.MinOrderQty,
		Images:      append([]string{}, product.Images...),
		IsActive:    product.IsActive,
		Variants:    make([]VariantDTO, 0, len(product.Variants)),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	if product.Seller != nil {
		dto.SellerName = product.Seller.CompanyName
	}
	if product.Category != nil {
		dto.Category = product.Category.Name
	}
	for _, variant := range product.Variants {
		dto.Variants = append(dto.Variants, VariantDTO{
			ID:           variant.ID,
			Name:         variant.Name,
			PaperType:    variant.PaperType,
			PricePerUnit: variant.PricePerUnit,
		})
	}
	for _, faq := range product.FAQs {
		dto.FAQs = append(dto.FAQs, FAQDTO{
			ID:       faq.ID,
			Question: faq.Question,
			Answer:   faq.Answer,
		})
	}
	return dto
}

// NewCategoryDTO maps a category row.
func NewCategoryDTO(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:       category.ID,
		Name:     category.Name,
		ImageURL: category.ImageURL,
	}
}
