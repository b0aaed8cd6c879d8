package models

import "github.com/google/uuid"

// Category groups products for browsing.
type Category struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name     string    `gorm:"type:text;not null;uniqueIndex"`
	ImageURL *string   `gorm:"column:image_url"`
}
