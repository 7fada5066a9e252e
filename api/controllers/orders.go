package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/narekgrig/shopfront-backend/api/middleware"
	"github.com/narekgrig/shopfront-backend/api/responses"
	"github.com/narekgrig/shopfront-backend/api/validators"
	orderssvc "github.com/narekgrig/shopfront-backend/internal/orders"
	"github.com/narekgrig/shopfront-backend/internal/pricing"
	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
	"github.com/narekgrig/shopfront-backend/pkg/logger"
)

type orderLinePayload struct {
	ProductID string `json:"product_id" validate:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type createOrderRequest struct {
	Lines          []orderLinePayload `json:"lines" validate:"required,min=1,dive"`
	ShippingMethod string             `json:"shipping_method" validate:"required,oneof=standard express"`
	PaymentMethod  string             `json:"payment_method" validate:"required,oneof=card cash idram"`

	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"required,max=30"`
	Email     string `json:"email" validate:"omitempty,email"`
	Address   string `json:"address" validate:"required,max=500"`
}

type quoteRequest struct {
	Lines          []orderLinePayload `json:"lines" validate:"required,min=1,dive"`
	ShippingMethod string             `json:"shipping_method" validate:"omitempty,oneof=standard express"`
}

func toOrderLines(payload []orderLinePayload) []orderssvc.LineInput {
	lines := make([]orderssvc.LineInput, 0, len(payload))
	for _, p := range payload {
		lines = append(lines, orderssvc.LineInput{
			ProductID: p.ProductID,
			VariantID: p.VariantID,
			Quantity:  p.Quantity,
		})
	}
	return lines
}

// OrderCreate finalizes the submitted cart into a committed order. Both
// authenticated users and guests may call it.
func OrderCreate(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Create(r.Context(), orderssvc.CreateInput{
			UserID:         middleware.UserIDFromContext(r.Context()),
			Lines:          toOrderLines(payload.Lines),
			ShippingMethod: pricing.ShippingMethod(payload.ShippingMethod),
			PaymentMethod:  payload.PaymentMethod,
			Customer: orderssvc.CustomerInput{
				FirstName: payload.FirstName,
				LastName:  payload.LastName,
				Phone:     payload.Phone,
				Email:     payload.Email,
				Address:   payload.Address,
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, receipt.OrderID)
			logg.Info(ctx, "order committed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// OrderQuote prices a cart without committing it.
func OrderQuote(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), orderssvc.QuoteInput{
			UserID:         middleware.UserIDFromContext(r.Context()),
			Lines:          toOrderLines(payload.Lines),
			ShippingMethod: pricing.ShippingMethod(payload.ShippingMethod),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// OrderList returns the authenticated user's orders, newest first.
func OrderList(repo *orderssvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		found, err := repo.ListByUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": found})
	}
}

// OrderDetail returns one of the authenticated user's orders.
func OrderDetail(repo *orderssvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		orderID := chi.URLParam(r, "orderId")

		order, err := repo.FindByID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found"))
			return
		}
		if order.UserID != userID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, order)
	}
}
