package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	"github.com/yazbox/yazbox-backend/pkg/pagination"
)

// ConversationDTO is a thread viewed from one participant's side.
type ConversationDTO struct {
	ID            uuid.UUID  `json:"id"`
	CounterpartID uuid.UUID  `json:"counterpart_id"`
	UnreadCount   int64      `json:"unread_count"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// MessageDTO is one conversation entry.
type MessageDTO struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageListResult is a page of messages with the cursor for the next one.
type MessageListResult struct {
	Messages   []MessageDTO       `json:"messages"`
	NextCursor *pagination.Cursor `json:"next_cursor,omitempty"`
}

// NewConversationDTO flattens the conversation from the viewer's perspective.
func NewConversationDTO(conversation *models.Conversation, viewerID uuid.UUID, unread int64) *ConversationDTO {
	counterpartID := conversation.UserOneID
	if viewerID == conversation.UserOneID {
		counterpartID = conversation.UserTwoID
	}
	return &ConversationDTO{
		ID:            conversation.ID,
		CounterpartID: counterpartID,
		UnreadCount:   unread,
		LastMessageAt: conversation.LastMessageAt,
		CreatedAt:     conversation.CreatedAt,
	}
}

// NewMessageDTO maps a message row.
func NewMessageDTO(message *models.Message) *MessageDTO {
	return &MessageDTO{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		Content:        message.Content,
		IsRead:         message.IsRead,
		CreatedAt:      message.CreatedAt,
	}
}
