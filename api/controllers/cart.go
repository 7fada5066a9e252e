package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/narekgrig/shopfront-backend/api/middleware"
	"github.com/narekgrig/shopfront-backend/api/responses"
	"github.com/narekgrig/shopfront-backend/api/validators"
	cartsvc "github.com/narekgrig/shopfront-backend/internal/cart"
	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
	"github.com/narekgrig/shopfront-backend/pkg/logger"
)

type cartLinePayload struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

type saveGuestCartRequest struct {
	Lines []cartLinePayload `json:"lines" validate:"dive"`
}

type saveGuestWishlistRequest struct {
	ProductIDs []string `json:"product_ids" validate:"dive,required"`
}

func toCartLines(payload []cartLinePayload) []cartsvc.Line {
	lines := make([]cartsvc.Line, 0, len(payload))
	for _, p := range payload {
		lines = append(lines, cartsvc.Line{
			ProductID: p.ProductID,
			VariantID: p.VariantID,
			Quantity:  p.Quantity,
		})
	}
	return lines
}

// CartFetch returns the authenticated user's cart.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		lines, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"lines": lines})
	}
}

// CartSetItem upserts one line; quantity zero removes it.
func CartSetItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var payload cartLinePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.SetItem(r.Context(), userID, cartsvc.Line{
			ProductID: payload.ProductID,
			VariantID: payload.VariantID,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// CartRemoveItem deletes one line.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		productID := chi.URLParam(r, "productId")
		variantID := r.URL.Query().Get("variant_id")

		if err := svc.RemoveItem(r.Context(), userID, productID, variantID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// CartClear empties the cart.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		if err := svc.Clear(r.Context(), userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// CartMerge folds the guest session's cart and wishlist into the account.
func CartMerge(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		sessionID := middleware.GuestSessionFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "guest session header is required"))
			return
		}

		merged, err := svc.MergeGuestState(r.Context(), userID, sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"lines": merged})
	}
}

// GuestCartFetch returns the anonymous session's saved state.
func GuestCartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.GuestSessionFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "guest session header is required"))
			return
		}

		state, err := svc.GetGuest(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// GuestCartSave overwrites the anonymous session's cart.
func GuestCartSave(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.GuestSessionFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "guest session header is required"))
			return
		}

		var payload saveGuestCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SaveGuestCart(r.Context(), sessionID, toCartLines(payload.Lines)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}

// GuestWishlistSave overwrites the anonymous session's wishlist.
func GuestWishlistSave(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.GuestSessionFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "guest session header is required"))
			return
		}

		var payload saveGuestWishlistRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SaveGuestWishlist(r.Context(), sessionID, payload.ProductIDs); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
