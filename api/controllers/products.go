package controllers

import (
	"net/http"

	"github.com/narekgrig/shopfront-backend/api/responses"
	"github.com/narekgrig/shopfront-backend/api/validators"
	"github.com/narekgrig/shopfront-backend/internal/catalog"
	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
	"github.com/narekgrig/shopfront-backend/pkg/logger"
)

type createProductRequest struct {
	Name            string                 `json:"name" validate:"required,min=1,max=200"`
	Brand           *string                `json:"brand,omitempty" validate:"omitempty,max=100"`
	Price           int                    `json:"price" validate:"gte=0"`
	DiscountPercent int                    `json:"discount_percent" validate:"gte=0,lte=100"`
	InStock         bool                   `json:"in_stock"`
	Variants        []createVariantRequest `json:"variants,omitempty" validate:"dive"`
}

type createVariantRequest struct {
	VariantID       string            `json:"variant_id" validate:"required,min=1,max=100"`
	Price           int               `json:"price" validate:"gte=0"`
	DiscountPercent int               `json:"discount_percent" validate:"gte=0,lte=100"`
	InStock         bool              `json:"in_stock"`
	Attributes      map[string]string `json:"attributes,omitempty"`
}

// ProductCreate allocates the next catalog ID and persists the listing.
func ProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.CreateProductInput{
			Name:            payload.Name,
			Brand:           payload.Brand,
			Price:           payload.Price,
			DiscountPercent: payload.DiscountPercent,
			InStock:         payload.InStock,
		}
		for _, variant := range payload.Variants {
			input.Variants = append(input.Variants, catalog.VariantInput{
				VariantID:       variant.VariantID,
				Price:           variant.Price,
				DiscountPercent: variant.DiscountPercent,
				InStock:         variant.InStock,
				Attributes:      variant.Attributes,
			})
		}

		product, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"product_id": product.ID,
		})
	}
}
