package pricing

import (
	"github.com/shopspring/decimal"
)

// ShippingMethod selects the delivery fee schedule.
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

// DiscountPath is the cart-global discount branch. The two discount paths are
// mutually exclusive; a cart never receives both.
type DiscountPath string

const (
	PathNone      DiscountPath = "none"
	PathFirstShop DiscountPath = "first_shop"
	PathThreshold DiscountPath = "threshold"
)

// Amounts are integer currency units throughout.
const (
	ExtraDiscountThreshold = 20000
	FreeShippingThreshold  = 5000
	StandardShippingFee    = 1000
	ExpressShippingFee     = 3000

	firstShopTargetPercent = 20
	extraTargetPercent     = 10
	bonusRatePercent       = 3
)

// Key identifies a cart line. VariantID is "default" for variant-less products.
type Key struct {
	ProductID string
	VariantID string
}

func (k Key) String() string {
	return k.ProductID + ":" + k.VariantID
}

// CartLine is a trusted line ready for pricing. Price and discount must come
// from the catalog reconciler, never from client input.
type CartLine struct {
	ProductID       string
	VariantID       string
	Name            string
	Quantity        int
	UnitPrice       int
	DiscountPercent int
}

// Key returns the line identity.
func (l CartLine) Key() Key {
	return Key{ProductID: l.ProductID, VariantID: l.VariantID}
}

// Context carries the per-call eligibility flags. IsFirstShopEligible is
// computed once by the caller (see FirstShopEligible) and stays fixed for the
// whole call; it is never re-derived per line.
type Context struct {
	IsGuest             bool
	IsEmailVerified     bool
	IsFirstShopEligible bool
	ShippingMethod      ShippingMethod
}

// FirstShopEligible derives the one-time discount eligibility from the
// profile flag and the identity provider's live verification flag.
func FirstShopEligible(isGuest, firstShop, emailVerified bool) bool {
	return !isGuest && firstShop && emailVerified
}

// PricedLine is the immutable per-line breakdown.
type PricedLine struct {
	CartLine

	MarkdownPerUnit   int
	MarkdownAmount    int
	FirstShopDiscount int
	ExtraDiscount     int
	FinalUnitPrice    int
}

// Result is the cart-level breakdown over the selected lines.
//
// Invariants:
//
//	Total == Subtotal - ProductMarkdown - ExtraDiscount - FirstShopDiscount + ShippingCost
//	TotalSavings == ProductMarkdown + ExtraDiscount + FirstShopDiscount + ShippingSavings
type Result struct {
	Subtotal          int
	ProductMarkdown   int
	FirstShopDiscount int
	ExtraDiscount     int
	ShippingCost      int
	ShippingSavings   int
	Total             int
	TotalSavings      int
	BonusAmount       int

	DiscountPath DiscountPath
	Lines        map[Key]PricedLine
}

// Selection is the explicit set of line keys to price. Callers pricing the
// whole cart pass SelectAll.
type Selection map[Key]struct{}

// SelectAll builds a selection covering every line.
func SelectAll(lines []CartLine) Selection {
	sel := make(Selection, len(lines))
	for _, l := range lines {
		sel[l.Key()] = struct{}{}
	}
	return sel
}

// Price computes the itemized breakdown for the selected lines. It is pure
// and total: any input with non-negative quantities and prices produces a
// result, never an error.
func Price(lines []CartLine, selected Selection, ctx Context) Result {
	res := Result{
		DiscountPath: PathNone,
		Lines:        make(map[Key]PricedLine),
	}

	var chosen []CartLine
	for _, line := range lines {
		if _, ok := selected[line.Key()]; ok {
			chosen = append(chosen, line)
		}
	}

	for _, line := range chosen {
		res.Subtotal += line.UnitPrice * line.Quantity
	}

	// The discount path is global to the cart and decided exactly once.
	switch {
	case ctx.IsFirstShopEligible:
		res.DiscountPath = PathFirstShop
	case res.Subtotal >= ExtraDiscountThreshold:
		res.DiscountPath = PathThreshold
	}

	for _, line := range chosen {
		priced := priceLine(line, res.DiscountPath)
		res.Lines[line.Key()] = priced
		res.ProductMarkdown += priced.MarkdownAmount
		res.FirstShopDiscount += priced.FirstShopDiscount
		res.ExtraDiscount += priced.ExtraDiscount
	}

	payable := res.Subtotal - res.ProductMarkdown - res.FirstShopDiscount - res.ExtraDiscount

	res.ShippingCost, res.ShippingSavings = shipping(ctx.ShippingMethod, res.Subtotal, payable)
	res.Total = payable + res.ShippingCost
	res.TotalSavings = res.ProductMarkdown + res.ExtraDiscount + res.FirstShopDiscount + res.ShippingSavings
	res.BonusAmount = payable * bonusRatePercent / 100

	return res
}

func priceLine(line CartLine, path DiscountPath) PricedLine {
	priced := PricedLine{CartLine: line}

	priced.MarkdownPerUnit = roundPercent(line.UnitPrice, line.DiscountPercent)
	priced.MarkdownAmount = priced.MarkdownPerUnit * line.Quantity

	var firstShopPerUnit, extraPerUnit int
	switch path {
	case PathFirstShop:
		// Fill to the 20% target: an already-markdowned item receives only
		// the remaining gap, never a stacked full 20%.
		target := roundPercent(line.UnitPrice, firstShopTargetPercent)
		if gap := target - priced.MarkdownPerUnit; gap > 0 {
			firstShopPerUnit = gap
		}
	case PathThreshold:
		if gapPercent := extraTargetPercent - line.DiscountPercent; gapPercent > 0 {
			extraPerUnit = roundPercent(line.UnitPrice, gapPercent)
		}
	}

	priced.FirstShopDiscount = firstShopPerUnit * line.Quantity
	priced.ExtraDiscount = extraPerUnit * line.Quantity
	priced.FinalUnitPrice = line.UnitPrice - priced.MarkdownPerUnit - firstShopPerUnit - extraPerUnit

	return priced
}

func shipping(method ShippingMethod, subtotal, payable int) (cost, savings int) {
	if subtotal == 0 {
		return 0, 0
	}
	if method == ShippingExpress {
		// Express is a flat fee, exempt from the free-shipping threshold.
		return ExpressShippingFee, 0
	}
	if payable > FreeShippingThreshold {
		return 0, StandardShippingFee
	}
	return StandardShippingFee, 0
}

// roundPercent computes round-half-up(amount * percent / 100).
func roundPercent(amount, percent int) int {
	return int(decimal.NewFromInt(int64(amount) * int64(percent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart())
}
