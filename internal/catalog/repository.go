package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/pagination"
)

// Repository exposes persistence helpers for the product catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error)
	ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error
	ReplaceFAQs(ctx context.Context, productID uuid.UUID, faqs []models.ProductFAQ) error
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listProductsParams struct {
	SellerID   *uuid.UUID
	CategoryID *uuid.UUID
	Search     string
	ActiveOnly bool
	Limit      int
	Cursor     *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repositoryImpl) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Omit("Variants", "FAQs", "Seller", "Category").
		Save(product).Error
}

func (r *repositoryImpl) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (r *repositoryImpl) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		Preload("FAQs").
		Preload("Seller").
		Preload("Seller.Profile").
		Preload("Category").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

func (r *repositoryImpl) ListProducts(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Variants").
		Preload("Category")
	if params.SellerID != nil {
		query = query.Where("seller_id = ?", *params.SellerID)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if params.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(params.Search)+"%")
	}
	if params.Cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			params.Cursor.CreatedAt, params.Cursor.ID,
		)
	}

	var rows []models.Product
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

func (r *repositoryImpl) ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	if len(variants) == 0 {
		return nil
	}
	for i := range variants {
		variants[i].ProductID = productID
	}
	return tx.Create(&variants).Error
}

func (r *repositoryImpl) ReplaceFAQs(ctx context.Context, productID uuid.UUID, faqs []models.ProductFAQ) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductFAQ{}).Error; err != nil {
		return err
	}
	if len(faqs) == 0 {
		return nil
	}
	for i := range faqs {
		faqs[i].ProductID = productID
	}
	return tx.Create(&faqs).Error
}

func (r *repositoryImpl) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, err
	}
	return &variant, nil
}

func (r *repositoryImpl) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
