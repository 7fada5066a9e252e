package catalog

import (
	"context"
	"testing"

	"github.com/narekgrig/shopfront-backend/pkg/db/models"
)

type stubProducts struct {
	products []models.Product
	err      error
	calls    int
}

func (s *stubProducts) FindByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.products, nil
}

func brandPtr(v string) *string { return &v }

func plainProduct(id string, price, discount int, inStock bool) models.Product {
	return models.Product{
		ID:              id,
		Name:            "product " + id,
		Brand:           brandPtr("acme"),
		Price:           price,
		DiscountPercent: discount,
		InStock:         inStock,
	}
}

func variantProduct(id string, variants ...models.ProductVariant) models.Product {
	return models.Product{ID: id, Name: "product " + id, Variants: variants}
}

func variant(productID, variantID string, price, discount int, inStock bool) models.ProductVariant {
	return models.ProductVariant{
		ProductID:       productID,
		VariantID:       variantID,
		Price:           price,
		DiscountPercent: discount,
		InStock:         inStock,
	}
}

func TestReconcileUsesCanonicalPrices(t *testing.T) {
	t.Parallel()

	loader := &stubProducts{products: []models.Product{plainProduct("0000001", 7500, 10, true)}}
	rec, err := NewReconciler(loader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines, err := rec.Reconcile(context.Background(), []LineRef{
		{ProductID: "0000001", VariantID: "default", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	got := lines[0]
	if !got.IsAvailable {
		t.Fatalf("expected line available: %+v", got)
	}
	if got.UnitPrice != 7500 || got.DiscountPercent != 10 {
		t.Fatalf("expected canonical price/discount, got %+v", got)
	}
}

func TestReconcileMissingProduct(t *testing.T) {
	t.Parallel()

	rec, _ := NewReconciler(&stubProducts{})
	lines, err := rec.Reconcile(context.Background(), []LineRef{
		{ProductID: "0009999", VariantID: "default", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].IsAvailable {
		t.Fatal("expected unavailable line")
	}
	if lines[0].Reason != ReasonProductGone {
		t.Fatalf("unexpected reason: %q", lines[0].Reason)
	}
}

func TestReconcileVariantResolution(t *testing.T) {
	t.Parallel()

	product := variantProduct("0000002",
		variant("0000002", "red-m", 3000, 5, true),
		variant("0000002", "blue-l", 3200, 0, false),
	)
	rec, _ := NewReconciler(&stubProducts{products: []models.Product{product}})

	lines, err := rec.Reconcile(context.Background(), []LineRef{
		{ProductID: "0000002", VariantID: "blue-l", Quantity: 1},
		{ProductID: "0000002", VariantID: "default", Quantity: 1},
		{ProductID: "0000002", VariantID: "green-s", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Matched variant, but out of stock.
	if lines[0].IsAvailable || lines[0].Reason != ReasonOutOfStock {
		t.Fatalf("expected out-of-stock line, got %+v", lines[0])
	}
	if lines[0].UnitPrice != 3200 {
		t.Fatalf("expected variant price, got %d", lines[0].UnitPrice)
	}

	// "default" against a variant-only product falls back to the first variant.
	if !lines[1].IsAvailable || lines[1].VariantID != "red-m" || lines[1].UnitPrice != 3000 {
		t.Fatalf("expected first-variant fallback, got %+v", lines[1])
	}

	// Unknown concrete variant is gone.
	if lines[2].IsAvailable || lines[2].Reason != ReasonVariantGone {
		t.Fatalf("expected variant-gone line, got %+v", lines[2])
	}
}

func TestReconcileBatchesProductFetch(t *testing.T) {
	t.Parallel()

	loader := &stubProducts{products: []models.Product{
		plainProduct("0000001", 1000, 0, true),
		plainProduct("0000002", 2000, 0, true),
	}}
	rec, _ := NewReconciler(loader)

	_, err := rec.Reconcile(context.Background(), []LineRef{
		{ProductID: "0000001", VariantID: "default", Quantity: 1},
		{ProductID: "0000001", VariantID: "default", Quantity: 2},
		{ProductID: "0000002", VariantID: "default", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected a single batched fetch, got %d", loader.calls)
	}
}

func TestReconcileEmptyVariantIDDefaults(t *testing.T) {
	t.Parallel()

	rec, _ := NewReconciler(&stubProducts{products: []models.Product{plainProduct("0000001", 500, 0, true)}})
	lines, err := rec.Reconcile(context.Background(), []LineRef{
		{ProductID: "0000001", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].VariantID != models.DefaultVariantID {
		t.Fatalf("expected default variant id, got %q", lines[0].VariantID)
	}
}
