package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yazbox/yazbox-backend/api/middleware"
	"github.com/yazbox/yazbox-backend/api/responses"
	"github.com/yazbox/yazbox-backend/api/validators"
	"github.com/yazbox/yazbox-backend/internal/cart"
	"github.com/yazbox/yazbox-backend/internal/orders"
	"github.com/yazbox/yazbox-backend/internal/toasts"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/logger"
	"github.com/yazbox/yazbox-backend/pkg/types"
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

type checkoutRequest struct {
	ShippingAddress checkoutAddress `json:"shipping_address" validate:"required"`
}

type checkoutAddress struct {
	Name       string  `json:"name"`
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country"`
}

// Checkout converts the session cart into an order and clears the cart.
func Checkout(svc orders.Service, storage cart.Storage, feed *toasts.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || storage == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout dependencies unavailable"))
			return
		}

		buyerID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := loadCartStore(r, storage, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := store.Items()
		if len(items) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
			return
		}

		lines := make([]orders.OrderLineInput, 0, len(items))
		for _, item := range items {
			lines = append(lines, orders.OrderLineInput{
				ProductID:  item.ProductID,
				VariantID:  item.VariantID,
				Quantity:   item.Quantity,
				ArtworkURL: item.ArtworkURL,
			})
		}

		input := orders.CreateOrderInput{
			Lines: lines,
			ShippingAddress: types.Address{
				Name:       body.ShippingAddress.Name,
				Line1:      body.ShippingAddress.Line1,
				Line2:      body.ShippingAddress.Line2,
				City:       body.ShippingAddress.City,
				State:      body.ShippingAddress.State,
				PostalCode: body.ShippingAddress.PostalCode,
				Country:    body.ShippingAddress.Country,
			},
		}

		order, err := svc.CreateOrder(r.Context(), buyerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The order is already committed; a stale cart is an annoyance,
		// not a failure.
		if err := store.Clear(r.Context()); err != nil && logg != nil {
			logg.Error(r.Context(), "clearing cart after checkout", err)
		}

		if feed != nil {
			feed.ForSession(middleware.AccessIDFromContext(r.Context())).Add("Order placed", enums.ToastSeveritySuccess)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns the buyer's order history, newest first.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultOrderPageSize, 1, maxOrderPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor, err := validators.ParseQueryCursor(r, "cursor")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOrders(r.Context(), buyerID, limit, cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetOrder returns one of the buyer's orders with its line items.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		buyerID, err := buyerIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.GetOrder(r.Context(), buyerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func buyerIDFromRequest(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}
