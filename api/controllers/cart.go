package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yazbox/yazbox-backend/api/middleware"
	"github.com/yazbox/yazbox-backend/api/responses"
	"github.com/yazbox/yazbox-backend/api/validators"
	"github.com/yazbox/yazbox-backend/internal/cart"
	"github.com/yazbox/yazbox-backend/internal/catalog"
	"github.com/yazbox/yazbox-backend/internal/toasts"
	"github.com/yazbox/yazbox-backend/pkg/enums"
	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/logger"
)

type cartView struct {
	Items     []cart.Item     `json:"items"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

func newCartView(store *cart.Store) cartView {
	return cartView{
		Items:     store.Items(),
		ItemCount: store.ItemCount(),
		Total:     store.Total(),
	}
}

// loadCartStore rehydrates the session cart. Carts are keyed by the access
// session id, so they survive page reloads but not logouts.
func loadCartStore(r *http.Request, storage cart.Storage, logg *logger.Logger) (*cart.Store, error) {
	sessionID := middleware.AccessIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing")
	}
	return cart.NewStore(r.Context(), sessionID, storage, logg)
}

// CartFetch returns the current cart contents.
func CartFetch(storage cart.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storage == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart storage unavailable"))
			return
		}

		store, err := loadCartStore(r, storage, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store))
	}
}

type cartAddRequest struct {
	ProductID  string  `json:"product_id" validate:"required"`
	VariantID  string  `json:"variant_id" validate:"required"`
	Quantity   int     `json:"quantity" validate:"required,min=1"`
	ArtworkURL *string `json:"artwork_url,omitempty"`
}

// CartAdd snapshots a catalog variant into the session cart. Prices come
// from the catalog at add time, never from the client.
func CartAdd(storage cart.Storage, catalogSvc catalog.Service, feed *toasts.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storage == nil || catalogSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart dependencies unavailable"))
			return
		}

		var body cartAddRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(body.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		variantID, err := uuid.Parse(body.VariantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id"))
			return
		}

		product, err := catalogSvc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.IsActive {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product is not available"))
			return
		}

		item, err := buildCartItem(product, variantID, body.Quantity, body.ArtworkURL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := loadCartStore(r, storage, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.Add(r.Context(), item); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if feed != nil {
			feed.ForSession(middleware.AccessIDFromContext(r.Context())).Add("Added to cart", enums.ToastSeveritySuccess)
		}
		responses.WriteSuccess(w, newCartView(store))
	}
}

func buildCartItem(product *catalog.ProductDTO, variantID uuid.UUID, quantity int, artworkURL *string) (cart.Item, error) {
	var variant *catalog.VariantDTO
	for i := range product.Variants {
		if product.Variants[i].ID == variantID {
			variant = &product.Variants[i]
			break
		}
	}
	if variant == nil {
		return cart.Item{}, pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to product")
	}

	imageURL := ""
	if len(product.Images) > 0 {
		imageURL = product.Images[0]
	}

	return cart.Item{
		ID:          cart.LineKey(product.ID, variant.ID),
		ProductID:   product.ID,
		VariantID:   variant.ID,
		ProductName: product.Name,
		VariantName: variant.Name,
		UnitPrice:   variant.PricePerUnit,
		MinOrderQty: product.MinOrderQty,
		Quantity:    quantity,
		ImageURL:    imageURL,
		ArtworkURL:  artworkURL,
		SellerID:    product.SellerID,
	}, nil
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartUpdateQuantity changes the quantity on one cart line.
func CartUpdateQuantity(storage cart.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storage == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart storage unavailable"))
			return
		}

		itemID := chi.URLParam(r, "itemId")
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id required"))
			return
		}

		var body cartQuantityRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := loadCartStore(r, storage, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.UpdateQuantity(r.Context(), itemID, body.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store))
	}
}

// CartRemove drops one line from the cart.
func CartRemove(storage cart.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storage == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart storage unavailable"))
			return
		}

		itemID := chi.URLParam(r, "itemId")
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id required"))
			return
		}

		store, err := loadCartStore(r, storage, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.Remove(r.Context(), itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store))
	}
}

// CartClear empties the cart, typically after checkout.
func CartClear(storage cart.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storage == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart storage unavailable"))
			return
		}

		store, err := loadCartStore(r, storage, logg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := store.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store))
	}
}
