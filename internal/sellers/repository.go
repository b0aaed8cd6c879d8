package sellers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
)

// Repository exposes persistence helpers for seller storefronts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, seller *models.Seller) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
	Update(ctx context.Context, seller *models.Seller) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a sellers repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, seller *models.Seller) error {
	return r.db.WithContext(ctx).Create(seller).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	err := r.db.WithContext(ctx).
		Preload("Profile").
		First(&seller, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, err
	}
	return &seller, nil
}

func (r *repositoryImpl) Update(ctx context.Context, seller *models.Seller) error {
	return r.db.WithContext(ctx).
		Omit("Profile").
		Save(seller).Error
}
