package models

import "github.com/google/uuid"

// ProductFAQ is a question/answer pair shown on the product page.
type ProductFAQ struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Question  string    `gorm:"column:question;not null"`
	Answer    string    `gorm:"column:answer;not null"`
}
