package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	"github.com/yazbox/yazbox-backend/pkg/pagination"
	"github.com/yazbox/yazbox-backend/pkg/types"
)

// OrderDTO is the flattened order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	BuyerID         uuid.UUID         `json:"buyer_id"`
	Total           decimal.Decimal   `json:"total"`
	Status          enums.OrderStatus `json:"status"`
	ShippingAddress types.Address     `json:"shipping_address"`
	Items           []OrderItemDTO    `json:"items"`
	CreatedAt       time.Time         `json:"created_at"`
}

// OrderItemDTO is one purchased line with its product snapshot.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	VariantID   uuid.UUID       `json:"variant_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	ArtworkURL  *string         `json:"artwork_url,omitempty"`
}

// OrderListResult is a page of orders with the cursor for the next one.
type OrderListResult struct {
	Orders     []OrderDTO         `json:"orders"`
	NextCursor *pagination.Cursor `json:"next_cursor,omitempty"`
}

// NewOrderDTO flattens the persisted order and its preloaded items.
func NewOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              order.ID,
		BuyerID:         order.BuyerID,
		Total:           order.Total,
		Status:          order.Status,
		ShippingAddress: order.ShippingAddress,
		Items:           make([]OrderItemDTO, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		line := OrderItemDTO{
			ID:         item.ID,
			ProductID:  item.ProductID,
			VariantID:  item.VariantID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			LineTotal:  item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			ArtworkURL: item.ArtworkURL,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
