package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yazbox/yazbox-backend/api/middleware"
	"github.com/yazbox/yazbox-backend/internal/catalog"
)

type memoryCartStorage struct {
	blobs map[string][]byte
}

func newMemoryCartStorage() *memoryCartStorage {
	return &memoryCartStorage{blobs: map[string][]byte{}}
}

func (s *memoryCartStorage) Load(ctx context.Context, sessionID string) ([]byte, error) {
	return s.blobs[sessionID], nil
}

func (s *memoryCartStorage) Save(ctx context.Context, sessionID string, blob []byte) error {
	s.blobs[sessionID] = blob
	return nil
}

func (s *memoryCartStorage) Delete(ctx context.Context, sessionID string) error {
	delete(s.blobs, sessionID)
	return nil
}

type testCatalogService struct {
	getProductFn func(ctx context.Context, productID uuid.UUID) (*catalog.ProductDTO, error)
}

func (s *testCatalogService) CreateProduct(ctx context.Context, sellerID uuid.UUID, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return nil, nil
}

func (s *testCatalogService) UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return nil, nil
}

func (s *testCatalogService) DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error {
	return nil
}

func (s *testCatalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*catalog.ProductDTO, error) {
	if s.getProductFn != nil {
		return s.getProductFn(ctx, productID)
	}
	return nil, nil
}

func (s *testCatalogService) ListProducts(ctx context.Context, input catalog.ListProductsInput) (*catalog.ProductListResult, error) {
	return &catalog.ProductListResult{}, nil
}

func (s *testCatalogService) ListCategories(ctx context.Context) ([]catalog.CategoryDTO, error) {
	return nil, nil
}

func (s *testCatalogService) SignImageUpload(ctx context.Context, sellerID uuid.UUID, filename, contentType string) (*catalog.ImageUploadDTO, error) {
	return nil, nil
}

func sessionRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithAccessID(ctx, "session-1")
	return req.WithContext(ctx)
}

func TestCartAddSnapshotsCatalogPrice(t *testing.T) {
	productID := uuid.New()
	variantID := uuid.New()
	sellerID := uuid.New()
	catalogSvc := &testCatalogService{
		getProductFn: func(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
			return &catalog.ProductDTO{
				ID:          productID,
				SellerID:    sellerID,
				Name:        "Business Cards",
				MinOrderQty: 50,
				IsActive:    true,
				Images:      []string{"https://cdn.example.com/cards.png"},
				Variants: []catalog.VariantDTO{
					{ID: variantID, Name: "Matte", PricePerUnit: decimal.RequireFromString("0.25")},
				},
			}, nil
		},
	}
	storage := newMemoryCartStorage()

	body := `{"product_id":"` + productID.String() + `","variant_id":"` + variantID.String() + `","quantity":100}`
	req := sessionRequest(http.MethodPost, "/api/v1/cart/items", body)
	resp := httptest.NewRecorder()
	CartAdd(storage, catalogSvc, nil, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data cartView `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 1 {
		t.Fatalf("expected 1 item got %d", len(envelope.Data.Items))
	}
	item := envelope.Data.Items[0]
	if !item.UnitPrice.Equal(decimal.RequireFromString("0.25")) {
		t.Fatalf("unexpected unit price %s", item.UnitPrice)
	}
	if item.Quantity != 100 {
		t.Fatalf("unexpected quantity %d", item.Quantity)
	}
	if !envelope.Data.Total.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("unexpected total %s", envelope.Data.Total)
	}
	if len(storage.blobs) != 1 {
		t.Fatal("expected cart persisted")
	}
}

func TestCartAddRejectsForeignVariant(t *testing.T) {
	productID := uuid.New()
	catalogSvc := &testCatalogService{
		getProductFn: func(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
			return &catalog.ProductDTO{
				ID:       productID,
				IsActive: true,
				Variants: []catalog.VariantDTO{{ID: uuid.New(), Name: "Matte", PricePerUnit: decimal.RequireFromString("0.25")}},
			}, nil
		},
	}

	body := `{"product_id":"` + productID.String() + `","variant_id":"` + uuid.NewString() + `","quantity":10}`
	req := sessionRequest(http.MethodPost, "/api/v1/cart/items", body)
	resp := httptest.NewRecorder()
	CartAdd(newMemoryCartStorage(), catalogSvc, nil, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartFetchRequiresSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	CartFetch(newMemoryCartStorage(), testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartClearEmptiesPersistedCart(t *testing.T) {
	productID := uuid.New()
	variantID := uuid.New()
	catalogSvc := &testCatalogService{
		getProductFn: func(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
			return &catalog.ProductDTO{
				ID:       productID,
				IsActive: true,
				Variants: []catalog.VariantDTO{{ID: variantID, Name: "Matte", PricePerUnit: decimal.RequireFromString("1.00")}},
			}, nil
		},
	}
	storage := newMemoryCartStorage()

	addBody := `{"product_id":"` + productID.String() + `","variant_id":"` + variantID.String() + `","quantity":5}`
	addResp := httptest.NewRecorder()
	CartAdd(storage, catalogSvc, nil, testLogger())(addResp, sessionRequest(http.MethodPost, "/api/v1/cart/items", addBody))
	if addResp.Code != http.StatusOK {
		t.Fatalf("add failed with %d", addResp.Code)
	}

	clearResp := httptest.NewRecorder()
	CartClear(storage, testLogger())(clearResp, sessionRequest(http.MethodDelete, "/api/v1/cart", ""))
	if clearResp.Code != http.StatusOK {
		t.Fatalf("clear failed with %d", clearResp.Code)
	}

	var envelope struct {
		Data cartView `json:"data"`
	}
	if err := json.Unmarshal(clearResp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Items) != 0 {
		t.Fatalf("expected empty cart got %d items", len(envelope.Data.Items))
	}
}

func TestCartAddQueuesSessionToast(t *testing.T) {
	productID := uuid.New()
	variantID := uuid.New()
	catalogSvc := &testCatalogService{
		getProductFn: func(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
			return &catalog.ProductDTO{
				ID:       productID,
				IsActive: true,
				Variants: []catalog.VariantDTO{{ID: variantID, Name: "Matte", PricePerUnit: decimal.RequireFromString("1.00")}},
			}, nil
		},
	}
	feed := newTestToastFeed()

	body := `{"product_id":"` + productID.String() + `","variant_id":"` + variantID.String() + `","quantity":5}`
	resp := httptest.NewRecorder()
	CartAdd(newMemoryCartStorage(), catalogSvc, feed, testLogger())(resp, sessionRequest(http.MethodPost, "/api/v1/cart/items", body))
	if resp.Code != http.StatusOK {
		t.Fatalf("add failed with %d: %s", resp.Code, resp.Body.String())
	}

	live := feed.ForSession("session-1").List()
	if len(live) != 1 {
		t.Fatalf("expected 1 toast, got %d", len(live))
	}
	if live[0].Message != "Added to cart" {
		t.Fatalf("unexpected message %q", live[0].Message)
	}
}
