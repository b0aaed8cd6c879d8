package messaging

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yazbox/yazbox-backend/pkg/db/models"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/pagination"
)

// Repository exposes persistence helpers for conversations and messages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateConversation(ctx context.Context, conversation *models.Conversation) error
	FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	FindConversationByPair(ctx context.Context, userOneID, userTwoID uuid.UUID) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	TouchConversation(ctx context.Context, id uuid.UUID, at time.Time) error
	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Message, *pagination.Cursor, error)
	MarkMessagesRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a messaging repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateConversation(ctx context.Context, conversation *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

func (r *repositoryImpl) FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *repositoryImpl) FindConversationByPair(ctx context.Context, userOneID, userTwoID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.WithContext(ctx).
		First(&conversation, "user_one_id = ? AND user_two_id = ?", userOneID, userTwoID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
		}
		return nil, err
	}
	return &conversation, nil
}

func (r *repositoryImpl) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Where("user_one_id = ? OR user_two_id = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST, created_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *repositoryImpl) TouchConversation(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("last_message_at", at).Error
}

func (r *repositoryImpl) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repositoryImpl) ListMessages(ctx context.Context, conversationID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Message, *pagination.Cursor, error) {
	bufferedLimit := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ?", conversationID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var messages []models.Message
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(bufferedLimit).
		Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(messages) > normalized {
		messages = messages[:normalized]
		last := messages[len(messages)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return messages, next, nil
}

func (r *repositoryImpl) MarkMessagesRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		UpdateColumn("is_read", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) CountUnread(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Count(&count).Error
	return count, err
}
