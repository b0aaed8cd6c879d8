package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/api/middleware"
	"github.com/yazbox/yazbox-backend/internal/catalog"
)

type capturingCatalogService struct {
	testCatalogService
	listFn   func(ctx context.Context, input catalog.ListProductsInput) (*catalog.ProductListResult, error)
	createFn func(ctx context.Context, sellerID uuid.UUID, input catalog.CreateProductInput) (*catalog.ProductDTO, error)
}

func (s *capturingCatalogService) ListProducts(ctx context.Context, input catalog.ListProductsInput) (*catalog.ProductListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, input)
	}
	return &catalog.ProductListResult{}, nil
}

func (s *capturingCatalogService) CreateProduct(ctx context.Context, sellerID uuid.UUID, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	if s.createFn != nil {
		return s.createFn(ctx, sellerID, input)
	}
	return &catalog.ProductDTO{}, nil
}

func TestListProductsParsesFilters(t *testing.T) {
	categoryID := uuid.New()
	var captured catalog.ListProductsInput
	svc := &capturingCatalogService{
		listFn: func(ctx context.Context, input catalog.ListProductsInput) (*catalog.ProductListResult, error) {
			captured = input
			return &catalog.ProductListResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=10&search=sticker&category_id="+categoryID.String(), nil)
	resp := httptest.NewRecorder()
	ListProducts(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if captured.Limit != 10 {
		t.Fatalf("unexpected limit %d", captured.Limit)
	}
	if captured.Search != "sticker" {
		t.Fatalf("unexpected search %q", captured.Search)
	}
	if captured.CategoryID == nil || *captured.CategoryID != categoryID {
		t.Fatal("expected category filter")
	}
	if !captured.ActiveOnly {
		t.Fatal("public listing must be active only")
	}
}

func TestListProductsRejectsBadCategory(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category_id=nope", nil)
	resp := httptest.NewRecorder()
	ListProducts(&capturingCatalogService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSellerCreateProductParsesPayload(t *testing.T) {
	sellerID := uuid.New()
	categoryID := uuid.New()
	var capturedSeller uuid.UUID
	var captured catalog.CreateProductInput
	svc := &capturingCatalogService{
		createFn: func(ctx context.Context, sid uuid.UUID, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
			capturedSeller = sid
			captured = input
			return &catalog.ProductDTO{ID: uuid.New()}, nil
		},
	}

	body := `{
		"category_id": "` + categoryID.String() + `",
		"name": "Vinyl Stickers",
		"min_order_qty": 25,
		"variants": [{"name": "3x3", "paper_type": "vinyl", "price_per_unit": "0.40"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/seller/products", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), sellerID.String()))
	resp := httptest.NewRecorder()
	SellerCreateProduct(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if capturedSeller != sellerID {
		t.Fatalf("unexpected seller %s", capturedSeller)
	}
	if captured.Name != "Vinyl Stickers" {
		t.Fatalf("unexpected name %q", captured.Name)
	}
	if captured.CategoryID != categoryID {
		t.Fatal("category id not parsed")
	}
	if len(captured.Variants) != 1 || captured.Variants[0].PricePerUnit.String() != "0.4" {
		t.Fatalf("variant not parsed: %+v", captured.Variants)
	}
	if !captured.IsActive {
		t.Fatal("products default to active")
	}
}

func TestSellerCreateProductRejectsBadPrice(t *testing.T) {
	body := `{
		"category_id": "` + uuid.NewString() + `",
		"name": "Vinyl Stickers",
		"min_order_qty": 25,
		"variants": [{"name": "3x3", "price_per_unit": "not-a-number"}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/seller/products", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()
	SellerCreateProduct(&capturingCatalogService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSellerCreateProductRequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/seller/products", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	SellerCreateProduct(&capturingCatalogService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
