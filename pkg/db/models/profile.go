package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/pkg/enums"
)

// Profile is the application-level user record, distinct from the
// authentication identity. Its id matches the owning User id.
type Profile struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	FullName  string            `gorm:"column:full_name;not null"`
	Role      enums.ProfileRole `gorm:"type:profile_role;not null;default:'buyer'"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
