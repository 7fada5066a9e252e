package orders

import "github.com/narekgrig/shopfront-backend/internal/pricing"

// Payment methods accepted at checkout. Payment capture itself happens
// downstream; the order records the chosen method.
const (
	PaymentCard  = "card"
	PaymentCash  = "cash"
	PaymentIdram = "idram"
)

// LineInput is one client-submitted cart reference. Prices never travel with
// it; the committer resolves them against the catalog.
type LineInput struct {
	ProductID string
	VariantID string
	Quantity  int
}

// CustomerInput carries the checkout contact fields.
type CustomerInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
	Address   string
}

// CreateInput is everything the committer needs to finalize an order.
type CreateInput struct {
	// UserID is empty for guest checkout.
	UserID string

	Lines          []LineInput
	ShippingMethod pricing.ShippingMethod
	PaymentMethod  string
	Customer       CustomerInput
}

// IsGuest reports whether the order is placed without an account.
func (in CreateInput) IsGuest() bool {
	return in.UserID == ""
}

// DroppedLine explains one cart line the committer could not keep.
type DroppedLine struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Reason    string `json:"reason"`
}

// QuoteInput asks for a price breakdown without committing an order.
type QuoteInput struct {
	// UserID is empty for guests.
	UserID string

	Lines          []LineInput
	ShippingMethod pricing.ShippingMethod
}

// QuoteLine is the per-line breakdown inside a quote.
type QuoteLine struct {
	ProductID         string `json:"product_id"`
	VariantID         string `json:"variant_id"`
	Name              string `json:"name"`
	Quantity          int    `json:"quantity"`
	UnitPrice         int    `json:"unit_price"`
	DiscountPercent   int    `json:"discount_percent"`
	MarkdownAmount    int    `json:"markdown_amount"`
	FirstShopDiscount int    `json:"first_shop_discount"`
	ExtraDiscount     int    `json:"extra_discount"`
	FinalUnitPrice    int    `json:"final_unit_price"`
}

// Quote is the non-committal price breakdown.
type Quote struct {
	Subtotal     int `json:"subtotal"`
	ShippingCost int `json:"shipping_cost"`
	Total        int `json:"total"`
	TotalSavings int `json:"total_savings"`
	BonusAmount  int `json:"bonus_amount"`

	DiscountPath     string        `json:"discount_path"`
	DiscountsApplied []string      `json:"discounts_applied"`
	Lines            []QuoteLine   `json:"lines"`
	DroppedLines     []DroppedLine `json:"dropped_lines,omitempty"`
}

// Receipt is the committed outcome returned to the client.
type Receipt struct {
	OrderID string `json:"order_id"`

	Subtotal     int `json:"subtotal"`
	ShippingCost int `json:"shipping_cost"`
	Total        int `json:"total"`
	TotalSavings int `json:"total_savings"`
	BonusAmount  int `json:"bonus_amount"`

	DiscountPath      string        `json:"discount_path"`
	DiscountsApplied  []string      `json:"discounts_applied"`
	DroppedLines      []DroppedLine `json:"dropped_lines,omitempty"`
	FirstShopConsumed bool          `json:"first_shop_consumed"`
}
