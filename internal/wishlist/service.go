package wishlist

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
)

// Service exposes wishlist operations for authenticated users.
type Service interface {
	List(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wishlist repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID string) ([]string, error) {
	return s.repo.List(ctx, userID)
}

func (s *service) Add(ctx context.Context, userID, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.repo.Add(ctx, userID, productID)
}

func (s *service) Remove(ctx context.Context, userID, productID string) error {
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.repo.Remove(ctx, userID, productID)
}
