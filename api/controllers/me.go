package controllers

import (
	"net/http"

	"github.com/yazbox/yazbox-backend/api/middleware"
	"github.com/yazbox/yazbox-backend/api/responses"
	"github.com/yazbox/yazbox-backend/internal/profiles"
	"github.com/yazbox/yazbox-backend/internal/session"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/logger"
)

// Me resolves the caller's profile through the session synchronizer. Profile
// rows are materialized asynchronously after signup, so a lookup racing a
// fresh signup is retried; when every attempt fails the session is revoked
// and the caller must sign in again.
func Me(sessions *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session registry unavailable"))
			return
		}

		userID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		profile, err := sessions.ForSession(accessID).OnSessionEstablished(r.Context(), userID, accessID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				// The synchronizer already revoked the session.
				sessions.Clear(accessID)
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session revoked"))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profiles.NewProfileDTO(profile))
	}
}
