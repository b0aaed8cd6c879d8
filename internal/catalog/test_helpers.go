package catalog

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/enums"
)

func mustCreateTestSeller(t *testing.T, tx *gorm.DB) *models.Seller {
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
	profile := &models.Profile{
		ID:       user.ID,
		FullName: "Catalog Tester",
		Role:     enums.ProfileRoleSeller,
	}
	if err := tx.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	seller := &models.Seller{
		ID:          profile.ID,
		CompanyName: "Test Print Shop",
	}
	if err := tx.Create(seller).Error; err != nil {
		t.Fatalf("create seller: %v", err)
	}
	return seller
}

func mustCreateTestCategory(t *testing.T, tx *gorm.DB) *models.Category {
	t.Helper()
	category := &models.Category{
		ID:   uuid.New(),
		Name: fmt.Sprintf("Boxes %s", uuid.NewString()),
	}
	if err := tx.Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, sellerID, categoryID uuid.UUID, name string, active bool) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		SellerID:    sellerID,
		CategoryID:  categoryID,
		Name:        name,
		Description: "test product",
		MinOrderQty: 50,
		Images:      pq.StringArray{},
		IsActive:    active,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func mustCreateTestProductValue() models.Product {
	return models.Product{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		CategoryID:  uuid.New(),
		Name:        "Kraft Mailer",
		Description: "test product",
		MinOrderQty: 50,
		Images:      pq.StringArray{},
		IsActive:    true,
	}
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return parsed
}

func mustCreateTestVariant(t *testing.T, tx *gorm.DB, productID uuid.UUID, name string, price string) *models.ProductVariant {
	t.Helper()
	variant := &models.ProductVariant{
		ID:           uuid.New(),
		ProductID:    productID,
		Name:         name,
		PricePerUnit: decimal.RequireFromString(price),
	}
	if err := tx.Create(variant).Error; err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return variant
}
