package pricing

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func line(product string, qty, price, discount int) CartLine {
	return CartLine{
		ProductID:       product,
		VariantID:       "default",
		Quantity:        qty,
		UnitPrice:       price,
		DiscountPercent: discount,
	}
}

func guestCtx(method ShippingMethod) Context {
	return Context{IsGuest: true, ShippingMethod: method}
}

func firstShopCtx(method ShippingMethod) Context {
	return Context{IsEmailVerified: true, IsFirstShopEligible: true, ShippingMethod: method}
}

func TestPriceDeterminism(t *testing.T) {
	t.Parallel()

	lines := []CartLine{
		line("p1", 2, 1000, 15),
		line("p2", 1, 25000, 0),
	}
	ctx := firstShopCtx(ShippingStandard)

	first := Price(lines, SelectAll(lines), ctx)
	second := Price(lines, SelectAll(lines), ctx)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different results:\n%+v\n%+v", first, second)
	}
}

func TestPriceDiscountPathExclusivity(t *testing.T) {
	t.Parallel()

	// Subtotal 30000 clears the threshold, but first-shop eligibility wins.
	lines := []CartLine{line("p1", 3, 10000, 0)}

	res := Price(lines, SelectAll(lines), firstShopCtx(ShippingStandard))
	require.Equal(t, PathFirstShop, res.DiscountPath)
	require.Zero(t, res.ExtraDiscount)
	require.Positive(t, res.FirstShopDiscount)

	res = Price(lines, SelectAll(lines), guestCtx(ShippingStandard))
	require.Equal(t, PathThreshold, res.DiscountPath)
	require.Zero(t, res.FirstShopDiscount)
	require.Positive(t, res.ExtraDiscount)
}

func TestPriceConservation(t *testing.T) {
	t.Parallel()

	carts := [][]CartLine{
		{line("p1", 1, 999, 15)},
		{line("p1", 3, 1000, 15), line("p2", 2, 4999, 0)},
		{line("p1", 7, 3333, 33), line("p2", 1, 25000, 5), line("p3", 2, 10, 99)},
		{},
	}
	contexts := []Context{
		guestCtx(ShippingStandard),
		guestCtx(ShippingExpress),
		firstShopCtx(ShippingStandard),
		firstShopCtx(ShippingExpress),
	}

	for _, lines := range carts {
		for _, ctx := range contexts {
			res := Price(lines, SelectAll(lines), ctx)
			require.Equal(t,
				res.Subtotal-res.ProductMarkdown-res.ExtraDiscount-res.FirstShopDiscount+res.ShippingCost,
				res.Total,
				"conservation violated for %+v / %+v", lines, ctx)
			require.Equal(t,
				res.ProductMarkdown+res.ExtraDiscount+res.FirstShopDiscount+res.ShippingSavings,
				res.TotalSavings)
		}
	}
}

func TestPriceFirstShopFillsToTargetNotStacked(t *testing.T) {
	t.Parallel()

	lines := []CartLine{line("p1", 1, 1000, 15)}
	res := Price(lines, SelectAll(lines), firstShopCtx(ShippingStandard))

	priced := res.Lines[lines[0].Key()]
	require.Equal(t, 150, priced.MarkdownPerUnit)
	// round(1000*0.20) - round(1000*0.15) = 200 - 150
	require.Equal(t, 50, priced.FirstShopDiscount)
	require.Equal(t, 800, priced.FinalUnitPrice)
}

func TestPriceFirstShopNoGapWhenMarkdownExceedsTarget(t *testing.T) {
	t.Parallel()

	lines := []CartLine{line("p1", 2, 1000, 30)}
	res := Price(lines, SelectAll(lines), firstShopCtx(ShippingStandard))

	priced := res.Lines[lines[0].Key()]
	require.Zero(t, priced.FirstShopDiscount)
	require.Equal(t, 600, priced.MarkdownAmount)
}

func TestPriceThresholdFillsToTenPercent(t *testing.T) {
	t.Parallel()

	lines := []CartLine{
		line("p1", 1, 15000, 4),
		line("p2", 1, 10000, 25),
	}
	res := Price(lines, SelectAll(lines), guestCtx(ShippingStandard))

	require.Equal(t, PathThreshold, res.DiscountPath)
	first := res.Lines[lines[0].Key()]
	// gap% = 10 - 4 = 6 → round(15000*0.06) = 900
	require.Equal(t, 900, first.ExtraDiscount)
	// Markdown past 10% leaves no gap.
	second := res.Lines[lines[1].Key()]
	require.Zero(t, second.ExtraDiscount)
}

func TestPriceRoundsHalfUp(t *testing.T) {
	t.Parallel()

	lines := []CartLine{line("p1", 1, 999, 15)}
	res := Price(lines, SelectAll(lines), guestCtx(ShippingStandard))

	// 999 * 15% = 149.85 → 150
	require.Equal(t, 150, res.Lines[lines[0].Key()].MarkdownPerUnit)

	lines = []CartLine{line("p1", 1, 10, 5)}
	res = Price(lines, SelectAll(lines), guestCtx(ShippingStandard))
	// 10 * 5% = 0.5 → 1
	require.Equal(t, 1, res.Lines[lines[0].Key()].MarkdownPerUnit)
}

func TestPriceFreeShippingBoundary(t *testing.T) {
	t.Parallel()

	// Payable exactly 5000: the threshold is exclusive, fee still applies.
	lines := []CartLine{line("p1", 1, 5000, 0)}
	res := Price(lines, SelectAll(lines), guestCtx(ShippingStandard))
	require.Equal(t, StandardShippingFee, res.ShippingCost)
	require.Zero(t, res.ShippingSavings)

	lines = []CartLine{line("p1", 1, 5001, 0)}
	res = Price(lines, SelectAll(lines), guestCtx(ShippingStandard))
	require.Zero(t, res.ShippingCost)
	require.Equal(t, StandardShippingFee, res.ShippingSavings)
}

func TestPriceExpressIsFlatAndExempt(t *testing.T) {
	t.Parallel()

	lines := []CartLine{line("p1", 1, 50000, 0)}
	res := Price(lines, SelectAll(lines), guestCtx(ShippingExpress))
	require.Equal(t, ExpressShippingFee, res.ShippingCost)
	require.Zero(t, res.ShippingSavings)
}

func TestPriceEmptyCartHasNoShipping(t *testing.T) {
	t.Parallel()

	res := Price(nil, Selection{}, guestCtx(ShippingStandard))
	require.Zero(t, res.Subtotal)
	require.Zero(t, res.ShippingCost)
	require.Zero(t, res.ShippingSavings)
	require.Zero(t, res.Total)
}

func TestPriceSelectionSubset(t *testing.T) {
	t.Parallel()

	lines := []CartLine{
		line("p1", 1, 10000, 0),
		line("p2", 5, 10000, 0),
	}
	sel := Selection{lines[0].Key(): {}}
	res := Price(lines, sel, guestCtx(ShippingStandard))

	require.Equal(t, 10000, res.Subtotal)
	require.Len(t, res.Lines, 1)
	// Subtotal of the selection alone stays under the extra-discount threshold.
	require.Equal(t, PathNone, res.DiscountPath)
}

func TestPriceGuestStandardExample(t *testing.T) {
	t.Parallel()

	lines := []CartLine{line("p1", 1, 10000, 0)}
	res := Price(lines, SelectAll(lines), guestCtx(ShippingStandard))

	require.Equal(t, 10000, res.Subtotal)
	require.Zero(t, res.ProductMarkdown)
	require.Zero(t, res.ShippingCost)
	require.Equal(t, 1000, res.ShippingSavings)
	require.Equal(t, 10000, res.Total)
	require.Equal(t, 1000, res.TotalSavings)
	require.Equal(t, 300, res.BonusAmount)
}

func TestFirstShopEligible(t *testing.T) {
	t.Parallel()

	require.True(t, FirstShopEligible(false, true, true))
	require.False(t, FirstShopEligible(true, true, true))
	require.False(t, FirstShopEligible(false, false, true))
	require.False(t, FirstShopEligible(false, true, false))
}

func TestPriceZeroQuantityLine(t *testing.T) {
	t.Parallel()

	lines := []CartLine{line("p1", 0, 1000, 15)}
	res := Price(lines, SelectAll(lines), firstShopCtx(ShippingStandard))

	require.Zero(t, res.Subtotal)
	priced := res.Lines[lines[0].Key()]
	require.Zero(t, priced.MarkdownAmount)
	require.Equal(t, 150, priced.MarkdownPerUnit)
	require.Equal(t, 800, priced.FinalUnitPrice)
}
