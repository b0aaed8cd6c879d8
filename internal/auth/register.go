package auth

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/yazbox/yazbox-backend/pkg/config"
	"github.com/yazbox/yazbox-backend/pkg/db"
	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/events"
	"github.com/yazbox/yazbox-backend/pkg/logger"
	"github.com/yazbox/yazbox-backend/pkg/security"
)

// RegisterService handles account creation.
type RegisterService interface {
	Signup(ctx context.Context, req SignupRequest) (*UserDTO, error)
}

type signupPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// RegisterServiceParams packages the dependencies for the signup flow.
type RegisterServiceParams struct {
	DB             *db.Client
	Publisher      signupPublisher
	Logger         *logger.Logger
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	publisher   signupPublisher
	logg        *logger.Logger
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Publisher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "event publisher required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	return &registerService{
		db:          params.DB,
		publisher:   params.Publisher,
		logg:        params.Logger,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Signup creates the authentication identity and publishes a user.signed_up
// event. The profile row is materialized by the worker, not here.
func (s *registerService) Signup(ctx context.Context, req SignupRequest) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(req.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full_name is required")
	}

	role := req.Role
	if role == "" {
		role = enums.ProfileRoleBuyer
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := NewUserRepository(tx)
		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !pkgerrors.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}
		if err := userRepo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "signup")
	}

	event := events.UserSignedUpEvent{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: strings.TrimSpace(req.FullName),
		Role:     role,
	}
	if err := s.publisher.Publish(ctx, events.TypeUserSignedUp, event); err != nil {
		// The account exists; the profile stays missing until the event is
		// republished or the worker catches up.
		logCtx := s.logg.WithUserID(ctx, user.ID.String())
		s.logg.Error(logCtx, "failed to publish signup event", err)
	}

	dto := NewUserDTO(user)
	return &dto, nil
}
