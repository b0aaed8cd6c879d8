package orders

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("YAZBOX_DB_DSN")
	if dsn == "" {
		t.Skip("YAZBOX_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func mustCreateTestProfile(t *testing.T, tx *gorm.DB, role enums.ProfileRole) uuid.UUID {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("yz_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		IsActive:     true,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	profile := &models.Profile{ID: user.ID, FullName: "Order Tester", Role: role}
	if err := tx.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return user.ID
}

func mustCreateTestListing(t *testing.T, tx *gorm.DB) (*models.Product, *models.ProductVariant) {
	t.Helper()
	sellerID := mustCreateTestProfile(t, tx, enums.ProfileRoleSeller)
	seller := &models.Seller{ID: sellerID, CompanyName: "Order Test Shop"}
	if err := tx.Create(seller).Error; err != nil {
		t.Fatalf("create seller: %v", err)
	}
	category := &models.Category{ID: uuid.New(), Name: fmt.Sprintf("Mailers %s", uuid.NewString())}
	if err := tx.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	product := &models.Product{
		ID:          uuid.New(),
		SellerID:    seller.ID,
		CategoryID:  category.ID,
		Name:        "Kraft Mailer",
		MinOrderQty: 50,
		Images:      pq.StringArray{},
		IsActive:    true,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	variant := &models.ProductVariant{
		ID:           uuid.New(),
		ProductID:    product.ID,
		Name:         "Small",
		PricePerUnit: decimal.RequireFromString("1.25"),
	}
	if err := tx.Create(variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return product, variant
}

func TestRepositoryOrderFlow(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()
	buyerID := mustCreateTestProfile(t, tx, enums.ProfileRoleBuyer)
	product, variant := mustCreateTestListing(t, tx)

	order := &models.Order{
		BuyerID: buyerID,
		Total:   decimal.RequireFromString("125.00"),
		ShippingAddress: types.Address{
			Name:       "Order Tester",
			Line1:      "1 Print Way",
			City:       "Austin",
			State:      "TX",
			PostalCode: "78701",
			Country:    "US",
		},
		Items: []models.OrderItem{
			{
				ProductID: product.ID,
				VariantID: variant.ID,
				Quantity:  100,
				UnitPrice: decimal.RequireFromString("1.25"),
			},
		},
	}
	if err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.ID == uuid.Nil {
		t.Fatal("expected order id to be generated")
	}

	found, err := repo.FindOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if len(found.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(found.Items))
	}
	if found.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", found.Status)
	}

	if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusShipped.String()); err != nil {
		t.Fatalf("update status: %v", err)
	}
	updated, err := repo.FindOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("find after update: %v", err)
	}
	if updated.Status != enums.OrderStatusShipped {
		t.Fatalf("expected shipped status, got %s", updated.Status)
	}

	rows, next, err := repo.ListOrders(ctx, buyerID, 10, nil)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(rows) != 1 || next != nil {
		t.Fatalf("expected single page with 1 order, got %d", len(rows))
	}

	if err := repo.UpdateStatus(ctx, uuid.New(), enums.OrderStatusShipped.String()); !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found for unknown order, got %v", err)
	}
}
