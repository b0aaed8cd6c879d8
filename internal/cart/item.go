package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one cart line, keyed by product+variant. Product and variant
// fields are snapshots taken at add time; the catalog row may change later.
type Item struct {
	ID           string          `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	VariantID    uuid.UUID       `json:"variant_id"`
	ProductName  string          `json:"product_name"`
	VariantName  string          `json:"variant_name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	MinOrderQty  int             `json:"min_order_quantity"`
	Quantity     int             `json:"quantity"`
	ImageURL     string          `json:"image_url,omitempty"`
	ArtworkURL   *string         `json:"artwork_url,omitempty"`
	SellerID     uuid.UUID       `json:"seller_id"`
}

// LineKey builds the compound cart key for a product/variant pair.
func LineKey(productID, variantID uuid.UUID) string {
	return productID.String() + "-" + variantID.String()
}

// Subtotal is the line price at the stored quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
