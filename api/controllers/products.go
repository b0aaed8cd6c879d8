package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yazbox/yazbox-backend/api/middleware"
	"github.com/yazbox/yazbox-backend/api/responses"
	"github.com/yazbox/yazbox-backend/api/validators"
	"github.com/yazbox/yazbox-backend/internal/catalog"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/logger"
)

const (
	defaultProductPageSize = 20
	maxProductPageSize     = 100
)

// ListProducts serves the public catalog listing with cursor pagination.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultProductPageSize, 1, maxProductPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor, err := validators.ParseQueryCursor(r, "cursor")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.ListProductsInput{
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
			ActiveOnly: true,
			Limit:      limit,
			Cursor:     cursor,
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("category_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id"))
				return
			}
			input.CategoryID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("seller_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seller id"))
				return
			}
			input.SellerID = &id
		}

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetProduct serves a single product with variants, FAQs and seller details.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListCategories serves the category index used by storefront filters.
func ListCategories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		categories, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

type productVariantRequest struct {
	Name         string `json:"name" validate:"required"`
	PaperType    string `json:"paper_type"`
	PricePerUnit string `json:"price_per_unit" validate:"required"`
}

type productFAQRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

type createProductRequest struct {
	CategoryID  string                  `json:"category_id" validate:"required"`
	Name        string                  `json:"name" validate:"required"`
	Description string                  `json:"description"`
	MinOrderQty int                     `json:"min_order_qty" validate:"required,min=1"`
	Images      []string                `json:"images,omitempty"`
	IsActive    *bool                   `json:"is_active,omitempty"`
	Variants    []productVariantRequest `json:"variants" validate:"required,min=1,dive"`
	FAQs        []productFAQRequest     `json:"faqs,omitempty" validate:"omitempty,dive"`
}

func (r createProductRequest) toCreateInput() (catalog.CreateProductInput, error) {
	categoryID, err := uuid.Parse(strings.TrimSpace(r.CategoryID))
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
	}

	variants, err := parseVariantRequests(r.Variants)
	if err != nil {
		return catalog.CreateProductInput{}, err
	}

	faqs := make([]catalog.FAQInput, 0, len(r.FAQs))
	for _, faq := range r.FAQs {
		faqs = append(faqs, catalog.FAQInput{Question: faq.Question, Answer: faq.Answer})
	}

	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	return catalog.CreateProductInput{
		CategoryID:  categoryID,
		Name:        strings.TrimSpace(r.Name),
		Description: r.Description,
		MinOrderQty: r.MinOrderQty,
		Images:      r.Images,
		IsActive:    isActive,
		Variants:    variants,
		FAQs:        faqs,
	}, nil
}

type updateProductRequest struct {
	CategoryID  *string                  `json:"category_id,omitempty"`
	Name        *string                  `json:"name,omitempty"`
	Description *string                  `json:"description,omitempty"`
	MinOrderQty *int                     `json:"min_order_qty,omitempty" validate:"omitempty,min=1"`
	Images      *[]string                `json:"images,omitempty"`
	IsActive    *bool                    `json:"is_active,omitempty"`
	Variants    *[]productVariantRequest `json:"variants,omitempty" validate:"omitempty,min=1,dive"`
	FAQs        *[]productFAQRequest     `json:"faqs,omitempty" validate:"omitempty,dive"`
}

func (r updateProductRequest) toUpdateInput() (catalog.UpdateProductInput, error) {
	input := catalog.UpdateProductInput{
		Name:        r.Name,
		Description: r.Description,
		MinOrderQty: r.MinOrderQty,
		Images:      r.Images,
		IsActive:    r.IsActive,
	}

	if r.CategoryID != nil {
		id, err := uuid.Parse(strings.TrimSpace(*r.CategoryID))
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category id")
		}
		input.CategoryID = &id
	}
	if r.Variants != nil {
		variants, err := parseVariantRequests(*r.Variants)
		if err != nil {
			return catalog.UpdateProductInput{}, err
		}
		input.Variants = &variants
	}
	if r.FAQs != nil {
		faqs := make([]catalog.FAQInput, 0, len(*r.FAQs))
		for _, faq := range *r.FAQs {
			faqs = append(faqs, catalog.FAQInput{Question: faq.Question, Answer: faq.Answer})
		}
		input.FAQs = &faqs
	}
	return input, nil
}

func parseVariantRequests(requests []productVariantRequest) ([]catalog.VariantInput, error) {
	variants := make([]catalog.VariantInput, 0, len(requests))
	for _, variant := range requests {
		price, err := decimal.NewFromString(strings.TrimSpace(variant.PricePerUnit))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant price")
		}
		variants = append(variants, catalog.VariantInput{
			Name:         variant.Name,
			PaperType:    variant.PaperType,
			PricePerUnit: price,
		})
	}
	return variants, nil
}

// SellerCreateProduct handles product creation for storefront owners.
func SellerCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID, err := sellerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), sellerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// SellerUpdateProduct applies partial updates to an owned product.
func SellerUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID, err := sellerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), sellerID, productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// SellerDeleteProduct removes an owned product from the catalog.
func SellerDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID, err := sellerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		if err := svc.DeleteProduct(r.Context(), sellerID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

type signImageUploadRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

// SellerSignImageUpload issues a signed PUT URL for a product image.
func SellerSignImageUpload(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID, err := sellerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload signImageUploadRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		upload, err := svc.SignImageUpload(r.Context(), sellerID, payload.Filename, payload.ContentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, upload)
	}
}

// sellerIDFromRequest resolves the storefront owner from the authenticated
// context. Seller rows share their id with the owning profile and user.
func sellerIDFromRequest(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}
