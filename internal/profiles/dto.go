package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/enums"
)

// ProfileDTO is the transport shape for a profile.
type ProfileDTO struct {
	ID        uuid.UUID         `json:"id"`
	FullName  string            `json:"full_name"`
	Role      enums.ProfileRole `json:"role"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewProfileDTO maps a profile row to its transport shape.
func NewProfileDTO(profile *models.Profile) *ProfileDTO {
	if profile == nil {
		return nil
	}
	return &ProfileDTO{
		ID:        profile.ID,
		FullName:  profile.FullName,
		Role:      profile.Role,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}
