package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/enums"
)

// SignupRequest contains the payload to create an account.
type SignupRequest struct {
	Email    string            `json:"email" validate:"required,email"`
	Password string            `json:"password" validate:"required,min=8"`
	FullName string            `json:"full_name" validate:"required"`
	Role     enums.ProfileRole `json:"role,omitempty"`
}

// LoginRequest contains the credentials for authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserDTO is the public view of an authentication identity.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LoginResponse carries the issued tokens and the authenticated user.
type LoginResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

// RefreshResponse carries the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// NewUserDTO maps a user row.
func NewUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		IsActive:    user.IsActive,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
