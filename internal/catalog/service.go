package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/yazbox/yazbox-backend/pkg/db"
	"github.com/yazbox/yazbox-backend/pkg/db/models"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/pagination"
)

const productImageURLTTL = 15 * time.Minute

// Service exposes catalog browsing and seller product management.
type Service interface {
	CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	SignImageUpload(ctx context.Context, sellerID uuid.UUID, filename, contentType string) (*ImageUploadDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	CategoryID  uuid.UUID
	Name        string
	Description string
	MinOrderQty int
	Images      []string
	IsActive    bool
	Variants    []VariantInput
	FAQs        []FAQInput
}

// VariantInput defines one purchasable configuration.
type VariantInput struct {
	Name         string
	PaperType    string
	PricePerUnit decimal.Decimal
}

// FAQInput defines a question/answer pair.
type FAQInput struct {
	Question string
	Answer   string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	CategoryID  *uuid.UUID
	Name        *string
	Description *string
	MinOrderQty *int
	Images      *[]string
	IsActive    *bool
	Variants    *[]VariantInput
	FAQs        *[]FAQInput
}

// ListProductsInput filters the public product listing.
type ListProductsInput struct {
	SellerID   *uuid.UUID
	CategoryID *uuid.UUID
	Search     string
	ActiveOnly bool
	Limit      int
	Cursor     *pagination.Cursor
}

// ProductListResult is a page of products with the cursor for the next one.
type ProductListResult struct {
	Products   []ProductDTO       `json:"products"`
	NextCursor *pagination.Cursor `json:"next_cursor,omitempty"`
}

// ImageUploadDTO carries a signed PUT URL and the public object path.
type ImageUploadDTO struct {
	UploadURL string `json:"upload_url"`
	ObjectURL string `json:"object_url"`
}

type uploadSigner interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	DefaultBucket() string
}

type service struct {
	repo     Repository
	dbClient *db.Client
	signer   uploadSigner
}

// NewService constructs a catalog service instance.
func NewService(repo Repository, dbClient *db.Client, signer uploadSigner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if signer == nil {
		return nil, fmt.Errorf("upload signer required")
	}
	return &service{repo: repo, dbClient: dbClient, signer: signer}, nil
}

// CreateProduct inserts the product with its variants and FAQs in one
// transaction.
func (s *service) CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product := &models.Product{
			SellerID:    sellerID,
			CategoryID:  input.CategoryID,
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			MinOrderQty: input.MinOrderQty,
			Images:      input.Images,
			IsActive:    input.IsActive,
		}
		if err := txRepo.CreateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		createdID = product.ID

		if err := txRepo.ReplaceVariants(ctx, product.ID, buildVariantRows(input.Variants)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert variants")
		}
		if len(input.FAQs) > 0 {
			if err := txRepo.ReplaceFAQs(ctx, product.ID, buildFAQRows(input.FAQs)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert faqs")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	return s.GetProduct(ctx, createdID)
}

// UpdateProduct mutates an owned product; variant and FAQ sets are replaced
// wholesale when provided.
func (s *service) UpdateProduct(ctx context.Context, sellerID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if err := validateUpdateInput(input); err != nil {
		return nil, err
	}

	product, err := s.loadOwnedProduct(ctx, sellerID, productID)
	if err != nil {
		return nil, err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		applyUpdate(product, input)
		if err := txRepo.UpdateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		if input.Variants != nil {
			if err := txRepo.ReplaceVariants(ctx, product.ID, buildVariantRows(*input.Variants)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace variants")
			}
		}
		if input.FAQs != nil {
			if err := txRepo.ReplaceFAQs(ctx, product.ID, buildFAQRows(*input.FAQs)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace faqs")
			}
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	return s.GetProduct(ctx, productID)
}

// DeleteProduct removes an owned product; variants and FAQs cascade.
func (s *service) DeleteProduct(ctx context.Context, sellerID, productID uuid.UUID) error {
	if _, err := s.loadOwnedProduct(ctx, sellerID, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// GetProduct loads one product with variants, FAQs, seller, and category.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return NewProductDTO(product), nil
}

// ListProducts returns a cursor-paginated page of products.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	rows, next, err := s.repo.ListProducts(ctx, listProductsParams{
		SellerID:   input.SellerID,
		CategoryID: input.CategoryID,
		Search:     strings.TrimSpace(input.Search),
		ActiveOnly: input.ActiveOnly,
		Limit:      input.Limit,
		Cursor:     input.Cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := &ProductListResult{
		Products:   make([]ProductDTO, 0, len(rows)),
		NextCursor: next,
	}
	for i := range rows {
		result.Products = append(result.Products, *NewProductDTO(&rows[i]))
	}
	return result, nil
}

// ListCategories returns every category ordered by name.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	categories := make([]CategoryDTO, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, NewCategoryDTO(row))
	}
	return categories, nil
}

// SignImageUpload issues a short-lived signed PUT URL for a product image.
func (s *service) SignImageUpload(ctx context.Context, sellerID uuid.UUID, filename, contentType string) (*ImageUploadDTO, error) {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported image extension")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content type must be an image")
	}

	object := fmt.Sprintf("products/%s/%s%s", sellerID, uuid.NewString(), ext)
	uploadURL, err := s.signer.SignedURL(s.signer.DefaultBucket(), object, contentType, productImageURLTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}
	return &ImageUploadDTO{
		UploadURL: uploadURL,
		ObjectURL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.signer.DefaultBucket(), object),
	}, nil
}

func (s *service) loadOwnedProduct(ctx context.Context, sellerID, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to seller")
	}
	return product, nil
}

func validateCreateInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.CategoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category_id is required")
	}
	if input.MinOrderQty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min_order_quantity must be at least 1")
	}
	if len(input.Variants) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one variant is required")
	}
	return validateVariants(input.Variants)
}

func validateUpdateInput(input UpdateProductInput) error {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
	}
	if input.CategoryID != nil && *input.CategoryID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category_id cannot be empty")
	}
	if input.MinOrderQty != nil && *input.MinOrderQty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min_order_quantity must be at least 1")
	}
	if input.Variants != nil {
		if len(*input.Variants) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "at least one variant is required")
		}
		return validateVariants(*input.Variants)
	}
	return nil
}

func validateVariants(variants []VariantInput) error {
	for _, variant := range variants {
		if strings.TrimSpace(variant.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant name is required")
		}
		if variant.PricePerUnit.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant price cannot be negative")
		}
	}
	return nil
}

func buildVariantRows(inputs []VariantInput) []models.ProductVariant {
	rows := make([]models.ProductVariant, 0, len(inputs))
	for _, input := range inputs {
		rows = append(rows, models.ProductVariant{
			Name:         strings.TrimSpace(input.Name),
			PaperType:    input.PaperType,
			PricePerUnit: input.PricePerUnit,
		})
	}
	return rows
}

func buildFAQRows(inputs []FAQInput) []models.ProductFAQ {
	rows := make([]models.ProductFAQ, 0, len(inputs))
	for _, input := range inputs {
		rows = append(rows, models.ProductFAQ{
			Question: input.Question,
			Answer:   input.Answer,
		})
	}
	return rows
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.MinOrderQty != nil {
		product.MinOrderQty = *input.MinOrderQty
	}
	if input.Images != nil {
		product.Images = *input.Images
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}
