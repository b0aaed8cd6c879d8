package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
)

func TestRepositoryProductFlow(t *testing.T) {
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

	seller := mustCreateTestSeller(t, tx)
	category := mustCreateTestCategory(t, tx)

	product := mustCreateTestProduct(t, tx, seller.ID, category.ID, "Kraft Mailer", true)
	mustCreateTestVariant(t, tx, product.ID, "Small", "1.25")
	mustCreateTestVariant(t, tx, product.ID, "Large", "2.50")

	detail, err := repo.FindProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if len(detail.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(detail.Variants))
	}
	if detail.Seller == nil || detail.Seller.CompanyName != "Test Print Shop" {
		t.Fatal("expected seller to be preloaded")
	}
	if detail.Category == nil || detail.Category.Name != category.Name {
		t.Fatal("expected category to be preloaded")
	}

	detail.Name = "Kraft Mailer v2"
	if err := repo.UpdateProduct(ctx, detail); err != nil {
		t.Fatalf("update product: %v", err)
	}
	updated, err := repo.FindProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("find after update: %v", err)
	}
	if updated.Name != "Kraft Mailer v2" {
		t.Fatalf("expected updated name, got %s", updated.Name)
	}

	if err := repo.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if _, err := repo.FindProduct(ctx, product.ID); !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := repo.DeleteProduct(ctx, product.ID); !pkgerrors.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestRepositoryListProductsFilters(t *testing.T) {
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

	seller := mustCreateTestSeller(t, tx)
	other := mustCreateTestSeller(t, tx)
	category := mustCreateTestCategory(t, tx)

	mustCreateTestProduct(t, tx, seller.ID, category.ID, "Glossy Sticker Sheet", true)
	mustCreateTestProduct(t, tx, seller.ID, category.ID, "Matte Sticker Roll", false)
	mustCreateTestProduct(t, tx, other.ID, category.ID, "Rigid Box", true)

	active, next, err := repo.ListProducts(ctx, listProductsParams{ActiveOnly: true, Limit: 10})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active products, got %d", len(active))
	}
	if next != nil {
		t.Fatal("expected no next cursor for small result set")
	}

	bySeller, _, err := repo.ListProducts(ctx, listProductsParams{SellerID: &seller.ID, Limit: 10})
	if err != nil {
		t.Fatalf("list by seller: %v", err)
	}
	if len(bySeller) != 2 {
		t.Fatalf("expected 2 seller products, got %d", len(bySeller))
	}

	matched, _, err := repo.ListProducts(ctx, listProductsParams{Search: "sticker", Limit: 10})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 sticker products, got %d", len(matched))
	}
}

func TestRepositoryListProductsCursor(t *testing.T) {
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

	seller := mustCreateTestSeller(t, tx)
	category := mustCreateTestCategory(t, tx)
	for i := 0; i < 5; i++ {
		mustCreateTestProduct(t, tx, seller.ID, category.ID, "Business Cards", true)
	}

	seen := map[uuid.UUID]bool{}
	first, cursor, err := repo.ListProducts(ctx, listProductsParams{SellerID: &seller.ID, Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 2 || cursor == nil {
		t.Fatalf("expected full first page with cursor, got %d rows", len(first))
	}
	for _, row := range first {
		seen[row.ID] = true
	}

	second, cursor, err := repo.ListProducts(ctx, listProductsParams{SellerID: &seller.ID, Limit: 2, Cursor: cursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second) != 2 || cursor == nil {
		t.Fatalf("expected full second page with cursor, got %d rows", len(second))
	}
	for _, row := range second {
		if seen[row.ID] {
			t.Fatalf("product %s repeated across pages", row.ID)
		}
		seen[row.ID] = true
	}

	third, cursor, err := repo.ListProducts(ctx, listProductsParams{SellerID: &seller.ID, Limit: 2, Cursor: cursor})
	if err != nil {
		t.Fatalf("third page: %v", err)
	}
	if len(third) != 1 || cursor != nil {
		t.Fatalf("expected final page of 1 without cursor, got %d rows", len(third))
	}
}

func TestRepositoryReplaceVariants(t *testing.T) {
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

	seller := mustCreateTestSeller(t, tx)
	category := mustCreateTestCategory(t, tx)
	product := mustCreateTestProduct(t, tx, seller.ID, category.ID, "Poster", true)
	mustCreateTestVariant(t, tx, product.ID, "A3", "4.00")

	if err := repo.ReplaceVariants(ctx, product.ID, buildVariantRows([]VariantInput{
		{Name: "A2", PricePerUnit: mustDecimal(t, "6.00")},
		{Name: "A1", PricePerUnit: mustDecimal(t, "9.00")},
	})); err != nil {
		t.Fatalf("replace variants: %v", err)
	}

	detail, err := repo.FindProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("find product: %v", err)
	}
	if len(detail.Variants) != 2 {
		t.Fatalf("expected 2 variants after replace, got %d", len(detail.Variants))
	}
	for _, variant := range detail.Variants {
		if variant.Name == "A3" {
			t.Fatal("expected original variant to be removed")
		}
	}
}
