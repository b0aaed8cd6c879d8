package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/api/middleware"
	"github.com/yazbox/yazbox-backend/api/responses"
	"github.com/yazbox/yazbox-backend/api/validators"
	"github.com/yazbox/yazbox-backend/internal/sellers"
	"github.com/yazbox/yazbox-backend/internal/session"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/logger"
)

type onboardSellerRequest struct {
	CompanyName    string  `json:"company_name" validate:"required"`
	Description    string  `json:"description"`
	LogoURL        *string `json:"logo_url,omitempty"`
	ShippingPolicy string  `json:"shipping_policy"`
	ReturnPolicy   string  `json:"return_policy"`
}

// OnboardSeller opens a storefront for the authenticated profile and
// promotes it to the seller role. The cached session role is switched only
// after the write commits; clients refresh their session afterwards to pick
// up the new role claim.
func OnboardSeller(svc sellers.Service, sessions *session.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sellers service unavailable"))
			return
		}

		profileID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body onboardSellerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seller, err := svc.Onboard(r.Context(), profileID, sellers.OnboardInput{
			CompanyName:    body.CompanyName,
			Description:    body.Description,
			LogoURL:        body.LogoURL,
			ShippingPolicy: body.ShippingPolicy,
			ReturnPolicy:   body.ReturnPolicy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if sessions != nil {
			if accessID := middleware.AccessIDFromContext(r.Context()); accessID != "" {
				sessions.ForSession(accessID).SwitchToSeller()
			}
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, seller)
	}
}

// GetSeller serves a public storefront page.
func GetSeller(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sellers service unavailable"))
			return
		}

		sellerID, err := uuid.Parse(chi.URLParam(r, "sellerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seller id"))
			return
		}

		seller, err := svc.GetSeller(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, seller)
	}
}

type updateStorefrontRequest struct {
	CompanyName    *string `json:"company_name,omitempty"`
	Description    *string `json:"description,omitempty"`
	LogoURL        *string `json:"logo_url,omitempty"`
	ShippingPolicy *string `json:"shipping_policy,omitempty"`
	ReturnPolicy   *string `json:"return_policy,omitempty"`
}

// UpdateStorefront applies partial updates to the caller's storefront.
func UpdateStorefront(svc sellers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sellers service unavailable"))
			return
		}

		sellerID, err := sellerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateStorefrontRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seller, err := svc.UpdateStorefront(r.Context(), sellerID, sellers.UpdateStorefrontInput{
			CompanyName:    body.CompanyName,
			Description:    body.Description,
			LogoURL:        body.LogoURL,
			ShippingPolicy: body.ShippingPolicy,
			ReturnPolicy:   body.ReturnPolicy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, seller)
	}
}
