package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yazbox/yazbox-backend/pkg/db"
	"github.com/yazbox/yazbox-backend/pkg/db/models"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/pagination"
	"github.com/yazbox/yazbox-backend/pkg/types"
)

// Service exposes buyer order operations.
type Service interface {
	CreateOrder(ctx context.Context, buyerID uuid.UUID, input CreateOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, buyerID uuid.UUID, limit int, cursor *pagination.Cursor) (*OrderListResult, error)
}

// CreateOrderInput is the checkout payload built from a cart snapshot.
type CreateOrderInput struct {
	Lines           []OrderLineInput
	ShippingAddress types.Address
}

// OrderLineInput references one cart line. Prices are resolved from the
// catalog, never trusted from the client.
type OrderLineInput struct {
	ProductID  uuid.UUID
	VariantID  uuid.UUID
	Quantity   int
	ArtworkURL *string
}

type productReader interface {
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
}

type service struct {
	repo     Repository
	dbClient *db.Client
	catalog  productReader
}

// NewService constructs an order service instance.
func NewService(repo Repository, dbClient *db.Client, catalog productReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	return &service{repo: repo, dbClient: dbClient, catalog: catalog}, nil
}

// CreateOrder resolves each line against the catalog and writes the order
// with its items in one transaction.
func (s *service) CreateOrder(ctx context.Context, buyerID uuid.UUID, input CreateOrderInput) (*OrderDTO, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}

	items, total, err := s.resolveLines(ctx, input.Lines)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		BuyerID:         buyerID,
		Total:           total,
		ShippingAddress: input.ShippingAddress,
		Items:           items,
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateOrder(ctx, order)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
	}

	return s.GetOrder(ctx, buyerID, order.ID)
}

// GetOrder loads one order scoped to the requesting buyer.
func (s *service) GetOrder(ctx context.Context, buyerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return NewOrderDTO(order), nil
}

// ListOrders returns a cursor-paginated page of the buyer's orders.
func (s *service) ListOrders(ctx context.Context, buyerID uuid.UUID, limit int, cursor *pagination.Cursor) (*OrderListResult, error) {
	rows, next, err := s.repo.ListOrders(ctx, buyerID, limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &OrderListResult{
		Orders:     make([]OrderDTO, 0, len(rows)),
		NextCursor: next,
	}
	for i := range rows {
		result.Orders = append(result.Orders, *NewOrderDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) resolveLines(ctx context.Context, lines []OrderLineInput) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}

		product, err := s.catalog.FindProduct(ctx, line.ProductID)
		if err != nil {
			if pkgerrors.As(err) != nil {
				return nil, decimal.Zero, err
			}
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "product is no longer available")
		}
		if line.Quantity < product.MinOrderQty {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity below minimum of %d for %s", product.MinOrderQty, product.Name))
		}

		variant, err := s.catalog.FindVariant(ctx, line.VariantID)
		if err != nil {
			if pkgerrors.As(err) != nil {
				return nil, decimal.Zero, err
			}
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
		}
		if variant.ProductID != product.ID {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to product")
		}

		items = append(items, models.OrderItem{
			ProductID:  product.ID,
			VariantID:  variant.ID,
			Quantity:   line.Quantity,
			UnitPrice:  variant.PricePerUnit,
			ArtworkURL: line.ArtworkURL,
		})
		total = total.Add(variant.PricePerUnit.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return items, total, nil
}
