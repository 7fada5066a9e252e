package controllers

import (
	"net/http"

	"github.com/narekgrig/shopfront-backend/api/middleware"
	"github.com/narekgrig/shopfront-backend/api/responses"
	"github.com/narekgrig/shopfront-backend/api/validators"
	"github.com/narekgrig/shopfront-backend/internal/users"
	"github.com/narekgrig/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
	"github.com/narekgrig/shopfront-backend/pkg/logger"
)

type profileSyncRequest struct {
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
}

// ProfileFetch returns the stored profile for the authenticated user.
func ProfileFetch(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		profile, err := repo.FindByID(r.Context(), userID)
		if err != nil {
			if users.IsNotFound(err) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ProfileSync creates or refreshes the profile row for the authenticated
// user. New profiles start with the one-time discount still available.
func ProfileSync(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		email := middleware.UserEmailFromContext(r.Context())

		var payload profileSyncRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile := &models.User{
			ID:        userID,
			Email:     email,
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			FirstShop: true,
		}
		if payload.Phone != "" {
			profile.Phone = &payload.Phone
		}
		if err := repo.Upsert(r.Context(), profile); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
