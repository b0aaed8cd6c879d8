package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a two-party message thread. Participants are stored in
// canonical order (lexicographically smaller uuid first) so the pair maps to
// exactly one row regardless of who initiated it.
type Conversation struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserOneID     uuid.UUID  `gorm:"column:user_one_id;type:uuid;not null;uniqueIndex:idx_conversation_pair"`
	UserTwoID     uuid.UUID  `gorm:"column:user_two_id;type:uuid;not null;uniqueIndex:idx_conversation_pair"`
	LastMessageAt *time.Time `gorm:"column:last_message_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
