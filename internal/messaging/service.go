package messaging

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/pkg/db"
	"github.com/yazbox/yazbox-backend/pkg/db/models"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/events"
	"github.com/yazbox/yazbox-backend/pkg/logger"
	"github.com/yazbox/yazbox-backend/pkg/pagination"
)

const maxMessageLength = 4000

// Service exposes conversation and message operations.
type Service interface {
	GetOrCreateConversation(ctx context.Context, userID, counterpartID uuid.UUID) (*ConversationDTO, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationDTO, error)
	SendMessage(ctx context.Context, senderID, conversationID uuid.UUID, content string) (*MessageDTO, error)
	ListMessages(ctx context.Context, readerID, conversationID uuid.UUID, limit int, cursor *pagination.Cursor) (*MessageListResult, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

type service struct {
	repo      Repository
	publisher eventPublisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs a messaging service instance.
func NewService(repo Repository, publisher eventPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messaging repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// orderPair returns the participants in canonical order, matching the
// uniqueness constraint on conversations.
func orderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) < 0 {
		return a, b
	}
	return b, a
}

// GetOrCreateConversation returns the single conversation for the pair,
// creating it on first contact. Concurrent first contacts race on the unique
// index; the loser re-fetches the winner's row.
func (s *service) GetOrCreateConversation(ctx context.Context, userID, counterpartID uuid.UUID) (*ConversationDTO, error) {
	if userID == uuid.Nil || counterpartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both participants are required")
	}
	if userID == counterpartID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot start a conversation with yourself")
	}

	userOneID, userTwoID := orderPair(userID, counterpartID)

	conversation, err := s.repo.FindConversationByPair(ctx, userOneID, userTwoID)
	if err == nil {
		return s.buildConversationDTO(ctx, conversation, userID)
	}
	if !pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find conversation")
	}

	conversation = &models.Conversation{
		UserOneID: userOneID,
		UserTwoID: userTwoID,
	}
	if err := s.repo.CreateConversation(ctx, conversation); err != nil {
		if db.IsUniqueViolation(err) {
			conversation, err = s.repo.FindConversationByPair(ctx, userOneID, userTwoID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find conversation after conflict")
			}
			return s.buildConversationDTO(ctx, conversation, userID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create conversation")
	}
	return s.buildConversationDTO(ctx, conversation, userID)
}

// ListConversations returns the user's threads, most recently active first.
func (s *service) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	rows, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list conversations")
	}

	conversations := make([]ConversationDTO, 0, len(rows))
	for i := range rows {
		dto, err := s.buildConversationDTO(ctx, &rows[i], userID)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, *dto)
	}
	return conversations, nil
}

// SendMessage appends a message to the conversation and publishes a
// message.sent event for notification fan-out.
func (s *service) SendMessage(ctx context.Context, senderID, conversationID uuid.UUID, content string) (*MessageDTO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content is required")
	}
	if len(content) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content too long")
	}

	conversation, recipientID, err := s.loadParticipantConversation(ctx, senderID, conversationID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert message")
	}
	if err := s.repo.TouchConversation(ctx, conversation.ID, s.now().UTC()); err != nil {
		logCtx := s.logg.WithConversationID(ctx, conversation.ID.String())
		s.logg.Error(logCtx, "failed to bump conversation activity", err)
	}

	event := events.MessageSentEvent{
		MessageID:      message.ID,
		ConversationID: conversation.ID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		SentAt:         message.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, events.TypeMessageSent, event); err != nil {
		s.logg.Error(ctx, "failed to publish message event", err)
	}

	return NewMessageDTO(message), nil
}

// ListMessages returns a page of messages and marks the reader's side read.
func (s *service) ListMessages(ctx context.Context, readerID, conversationID uuid.UUID, limit int, cursor *pagination.Cursor) (*MessageListResult, error) {
	conversation, _, err := s.loadParticipantConversation(ctx, readerID, conversationID)
	if err != nil {
		return nil, err
	}

	rows, next, err := s.repo.ListMessages(ctx, conversation.ID, limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}

	if _, err := s.repo.MarkMessagesRead(ctx, conversation.ID, readerID); err != nil {
		logCtx := s.logg.WithConversationID(ctx, conversation.ID.String())
		s.logg.Error(logCtx, "failed to mark messages read", err)
	}

	result := &MessageListResult{
		Messages:   make([]MessageDTO, 0, len(rows)),
		NextCursor: next,
	}
	for i := range rows {
		result.Messages = append(result.Messages, *NewMessageDTO(&rows[i]))
	}
	return result, nil
}

func (s *service) loadParticipantConversation(ctx context.Context, userID, conversationID uuid.UUID) (*models.Conversation, uuid.UUID, error) {
	conversation, err := s.repo.FindConversation(ctx, conversationID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, uuid.Nil, err
		}
		return nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load conversation")
	}

	switch userID {
	case conversation.UserOneID:
		return conversation, conversation.UserTwoID, nil
	case conversation.UserTwoID:
		return conversation, conversation.UserOneID, nil
	default:
		return nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a conversation participant")
	}
}

func (s *service) buildConversationDTO(ctx context.Context, conversation *models.Conversation, viewerID uuid.UUID) (*ConversationDTO, error) {
	unread, err := s.repo.CountUnread(ctx, conversation.ID, viewerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread messages")
	}
	return NewConversationDTO(conversation, viewerID, unread), nil
}
