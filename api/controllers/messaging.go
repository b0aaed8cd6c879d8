package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/api/responses"
	"github.com/yazbox/yazbox-backend/api/validators"
	"github.com/yazbox/yazbox-backend/internal/messaging"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/logger"
)

const (
	defaultMessagePageSize = 50
	maxMessagePageSize     = 200
)

type openConversationRequest struct {
	CounterpartID string `json:"counterpart_id" validate:"required"`
}

// OpenConversation finds or creates the conversation with another user.
func OpenConversation(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messaging service unavailable"))
			return
		}

		userID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body openConversationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		counterpartID, err := uuid.Parse(body.CounterpartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid counterpart id"))
			return
		}

		conversation, err := svc.GetOrCreateConversation(r.Context(), userID, counterpartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, conversation)
	}
}

// ListConversations returns the user's conversations, most recent first.
func ListConversations(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messaging service unavailable"))
			return
		}

		userID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conversations, err := svc.ListConversations(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, conversations)
	}
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

// SendMessage appends a message to a conversation the user participates in.
func SendMessage(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messaging service unavailable"))
			return
		}

		userID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conversationID, err := uuid.Parse(chi.URLParam(r, "conversationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid conversation id"))
			return
		}

		var body sendMessageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		message, err := svc.SendMessage(r.Context(), userID, conversationID, body.Content)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}

// ListMessages pages through a conversation and marks the viewed side read.
func ListMessages(svc messaging.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "messaging service unavailable"))
			return
		}

		userID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conversationID, err := uuid.Parse(chi.URLParam(r, "conversationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid conversation id"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultMessagePageSize, 1, maxMessagePageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor, err := validators.ParseQueryCursor(r, "cursor")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListMessages(r.Context(), userID, conversationID, limit, cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
