package catalog

import (
	"context"

	"github.com/narekgrig/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
)

// Drop reasons recorded on unavailable lines.
const (
	ReasonProductGone = "product gone"
	ReasonVariantGone = "variant gone"
	ReasonOutOfStock  = "out of stock"
)

type productLoader interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

// LineRef is a client-submitted cart reference. Any price or discount the
// client sent alongside is deliberately not represented here: reconciliation
// only ever trusts the store.
type LineRef struct {
	ProductID string
	VariantID string
	Quantity  int
}

// ReconciledLine carries the server-truth pricing fields for one reference.
type ReconciledLine struct {
	ProductID       string
	VariantID       string
	Name            string
	Quantity        int
	UnitPrice       int
	DiscountPercent int
	InStock         bool

	IsAvailable bool
	Reason      string
}

// Reconciler resolves client cart references against the canonical catalog.
type Reconciler struct {
	products productLoader
}

// NewReconciler builds a reconciler over the catalog repository.
func NewReconciler(products productLoader) (*Reconciler, error) {
	if products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product loader required")
	}
	return &Reconciler{products: products}, nil
}

// Reconcile re-fetches every referenced product once and resolves each line
// to its canonical price, discount, and stock state.
func (r *Reconciler) Reconcile(ctx context.Context, refs []LineRef) ([]ReconciledLine, error) {
	ids := distinctProductIDs(refs)

	products, err := r.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]ReconciledLine, 0, len(refs))
	for _, ref := range refs {
		lines = append(lines, resolveLine(ref, byID[ref.ProductID]))
	}
	return lines, nil
}

func resolveLine(ref LineRef, product *models.Product) ReconciledLine {
	out := ReconciledLine{
		ProductID: ref.ProductID,
		VariantID: ref.VariantID,
		Quantity:  ref.Quantity,
	}
	if out.VariantID == "" {
		out.VariantID = models.DefaultVariantID
	}

	if product == nil {
		out.Reason = ReasonProductGone
		return out
	}
	out.Name = product.Name

	if len(product.Variants) == 0 {
		// Variant-less product: the product row holds the truth.
		return finishLine(out, product.Price, product.DiscountPercent, product.InStock)
	}

	if variant := matchVariant(product.Variants, out.VariantID); variant != nil {
		out.VariantID = variant.VariantID
		return finishLine(out, variant.Price, variant.DiscountPercent, variant.InStock)
	}

	if out.VariantID == models.DefaultVariantID {
		// The client predates this product gaining variants: fall back to the
		// first variant rather than dropping the line.
		variant := product.Variants[0]
		out.VariantID = variant.VariantID
		return finishLine(out, variant.Price, variant.DiscountPercent, variant.InStock)
	}

	out.Reason = ReasonVariantGone
	return out
}

func finishLine(out ReconciledLine, price, discount int, inStock bool) ReconciledLine {
	out.UnitPrice = price
	out.DiscountPercent = discount
	out.InStock = inStock
	out.IsAvailable = inStock
	if !inStock {
		out.Reason = ReasonOutOfStock
	}
	return out
}

func matchVariant(variants []models.ProductVariant, variantID string) *models.ProductVariant {
	for i := range variants {
		if variants[i].VariantID == variantID {
			return &variants[i]
		}
	}
	return nil
}

func distinctProductIDs(refs []LineRef) []string {
	seen := make(map[string]struct{}, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.ProductID]; ok {
			continue
		}
		seen[ref.ProductID] = struct{}{}
		ids = append(ids, ref.ProductID)
	}
	return ids
}
