package sellers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yazbox/yazbox-backend/internal/profiles"
	"github.com/yazbox/yazbox-backend/pkg/db"
	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
)

// Service exposes seller onboarding and storefront management.
type Service interface {
	Onboard(ctx context.Context, profileID uuid.UUID, input OnboardInput) (*SellerDTO, error)
	GetSeller(ctx context.Context, sellerID uuid.UUID) (*SellerDTO, error)
	UpdateStorefront(ctx context.Context, sellerID uuid.UUID, input UpdateStorefrontInput) (*SellerDTO, error)
}

// OnboardInput is the payload to open a storefront.
type OnboardInput struct {
	CompanyName    string
	Description    string
	LogoURL        *string
	ShippingPolicy string
	ReturnPolicy   string
}

// UpdateStorefrontInput holds optional storefront mutations.
type UpdateStorefrontInput struct {
	CompanyName    *string
	Description    *string
	LogoURL        *string
	ShippingPolicy *string
	ReturnPolicy   *string
}

// SellerDTO is the storefront payload returned to clients.
type SellerDTO struct {
	ID             uuid.UUID `json:"id"`
	CompanyName    string    `json:"company_name"`
	Description    string    `json:"description"`
	LogoURL        *string   `json:"logo_url,omitempty"`
	ShippingPolicy string    `json:"shipping_policy"`
	ReturnPolicy   string    `json:"return_policy"`
	OwnerName      string    `json:"owner_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type service struct {
	repo     Repository
	profiles profiles.Repository
	dbClient *db.Client
}

// NewService constructs a sellers service instance.
func NewService(repo Repository, profileRepo profiles.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sellers repository required")
	}
	if profileRepo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, profiles: profileRepo, dbClient: dbClient}, nil
}

// Onboard creates the seller row and flips the profile role to seller in one
// transaction. Callers switch their session role only after this returns.
func (s *service) Onboard(ctx context.Context, profileID uuid.UUID, input OnboardInput) (*SellerDTO, error) {
	if strings.TrimSpace(input.CompanyName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name is required")
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile.Role == enums.ProfileRoleSeller {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "profile is already a seller")
	}

	seller := &models.Seller{
		ID:             profileID,
		CompanyName:    strings.TrimSpace(input.CompanyName),
		Description:    input.Description,
		LogoURL:        input.LogoURL,
		ShippingPolicy: input.ShippingPolicy,
		ReturnPolicy:   input.ReturnPolicy,
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, seller); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "seller already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert seller")
		}
		if err := s.profiles.WithTx(tx).UpdateRole(ctx, profileID, enums.ProfileRoleSeller); err != nil {
			if pkgerrors.As(err) != nil {
				return err
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update profile role")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "onboard seller")
	}

	return s.GetSeller(ctx, profileID)
}

// GetSeller loads one storefront with its owner profile.
func (s *service) GetSeller(ctx context.Context, sellerID uuid.UUID) (*SellerDTO, error) {
	seller, err := s.repo.GetByID(ctx, sellerID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return newSellerDTO(seller), nil
}

// UpdateStorefront mutates the caller's own storefront.
func (s *service) UpdateStorefront(ctx context.Context, sellerID uuid.UUID, input UpdateStorefrontInput) (*SellerDTO, error) {
	if input.CompanyName != nil && strings.TrimSpace(*input.CompanyName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name cannot be empty")
	}

	seller, err := s.repo.GetByID(ctx, sellerID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}

	if input.CompanyName != nil {
		seller.CompanyName = strings.TrimSpace(*input.CompanyName)
	}
	if input.Description != nil {
		seller.Description = *input.Description
	}
	if input.LogoURL != nil {
		seller.LogoURL = input.LogoURL
	}
	if input.ShippingPolicy != nil {
		seller.ShippingPolicy = *input.ShippingPolicy
	}
	if input.ReturnPolicy != nil {
		seller.ReturnPolicy = *input.ReturnPolicy
	}

	if err := s.repo.Update(ctx, seller); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update seller")
	}
	return newSellerDTO(seller), nil
}

func newSellerDTO(seller *models.Seller) *SellerDTO {
	dto := &SellerDTO{
		ID:             seller.ID,
		CompanyName:    seller.CompanyName,
		Description:    seller.Description,
		LogoURL:        seller.LogoURL,
		ShippingPolicy: seller.ShippingPolicy,
		ReturnPolicy:   seller.ReturnPolicy,
		CreatedAt:      seller.CreatedAt,
	}
	if seller.Profile != nil {
		dto.OwnerName = seller.Profile.FullName
	}
	return dto
}
