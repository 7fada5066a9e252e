package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/narekgrig/shopfront-backend/internal/sequence"
	"github.com/narekgrig/shopfront-backend/pkg/db"
	"github.com/narekgrig/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
	"gorm.io/gorm"
)

const createAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog write operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds a catalog service backed by the provided stack.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// CreateProductInput captures a new catalog listing.
type CreateProductInput struct {
	Name            string
	Brand           *string
	Price           int
	DiscountPercent int
	InStock         bool
	Variants        []VariantInput
}

// VariantInput describes one variant of a new product.
type VariantInput struct {
	VariantID       string
	Price           int
	DiscountPercent int
	InStock         bool
	Attributes      map[string]string
}

// CreateProduct allocates the next product ID and persists the listing in the
// same transaction, retrying on counter contention.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price must be non-negative")
	}
	if input.DiscountPercent < 0 || input.DiscountPercent > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount percent must be between 0 and 100")
	}
	for _, variant := range input.Variants {
		if strings.TrimSpace(variant.VariantID) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
		}
		if variant.Price < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant price must be non-negative")
		}
	}

	var created *models.Product
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		lastErr = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			id, err := sequence.Next(ctx, sequence.NewRepository(tx), sequence.Products)
			if err != nil {
				return err
			}

			product := buildProduct(id, input)
			if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
				return err
			}
			created = product
			return nil
		})
		if lastErr == nil {
			return created, nil
		}
		if !db.IsRetryableTxError(lastErr) {
			return nil, lastErr
		}
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "create product")
}

func buildProduct(id string, input CreateProductInput) *models.Product {
	product := &models.Product{
		ID:              id,
		Name:            strings.TrimSpace(input.Name),
		Brand:           input.Brand,
		Price:           input.Price,
		DiscountPercent: input.DiscountPercent,
		InStock:         input.InStock,
	}
	for _, variant := range input.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			ProductID:       id,
			VariantID:       variant.VariantID,
			Price:           variant.Price,
			DiscountPercent: variant.DiscountPercent,
			InStock:         variant.InStock,
			Attributes:      models.JSONMap(variant.Attributes),
		})
	}
	return product
}
