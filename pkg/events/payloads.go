package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/yazbox/yazbox-backend/pkg/enums"
)

// UserSignedUpEvent signals that a new account was created and its profile
// row still needs to be materialized.
type UserSignedUpEvent struct {
	UserID   uuid.UUID         `json:"user_id"`
	Email    string            `json:"email"`
	FullName string            `json:"full_name"`
	Role     enums.ProfileRole `json:"role"`
}

// MessageSentEvent is emitted for every message so downstream consumers can
// fan out notifications to the other conversation participant.
type MessageSentEvent struct {
	MessageID      uuid.UUID `json:"message_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	RecipientID    uuid.UUID `json:"recipient_id"`
	SentAt         time.Time `json:"sent_at"`
}
