package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// GuestUserID is stored on orders placed without an authenticated user.
const GuestUserID = "guest"

// Order statuses. Transitions past pending belong to the fulfillment flow.
const (
	OrderStatusPending = "pending"
)

// Discount kinds recorded on a committed order.
const (
	DiscountFirstShop       = "first_shop"
	DiscountExtra           = "extra_discount"
	DiscountProductMarkdown = "product_markdown"
	DiscountFreeShipping    = "free_shipping"
)

// Order is immutable once committed, except for status transitions owned by
// the fulfillment flow.
type Order struct {
	ID     string `gorm:"column:id;type:text;primaryKey"`
	UserID string `gorm:"column:user_id;type:text;not null"`

	Items OrderItems `gorm:"column:items;type:jsonb;not null"`

	ShippingMethod string `gorm:"column:shipping_method;not null"`
	PaymentMethod  string `gorm:"column:payment_method;not null"`

	Subtotal     int `gorm:"column:subtotal;not null"`
	ShippingCost int `gorm:"column:shipping_cost;not null"`
	Total        int `gorm:"column:total;not null"`
	TotalSavings int `gorm:"column:total_savings;not null"`
	BonusAmount  int `gorm:"column:bonus_amount;not null"`

	Discounts pq.StringArray `gorm:"column:discounts;type:text[];not null;default:ARRAY[]::text[]"`

	Status string `gorm:"column:status;not null;default:'pending'"`

	CustomerFirstName string `gorm:"column:customer_first_name;not null;default:''"`
	CustomerLastName  string `gorm:"column:customer_last_name;not null;default:''"`
	CustomerPhone     string `gorm:"column:customer_phone;not null;default:''"`
	DeliveryAddress   string `gorm:"column:delivery_address;not null;default:''"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is the priced-line snapshot persisted with the order. Amounts are
// integer currency units, per the pricing engine's breakdown.
type OrderItem struct {
	ProductID       string `json:"product_id"`
	VariantID       string `json:"variant_id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	UnitPrice       int    `json:"unit_price"`
	DiscountPercent int    `json:"discount_percent"`

	MarkdownPerUnit   int `json:"markdown_per_unit"`
	MarkdownAmount    int `json:"markdown_amount"`
	FirstShopDiscount int `json:"first_shop_discount"`
	ExtraDiscount     int `json:"extra_discount"`
	FinalUnitPrice    int `json:"final_unit_price"`
}

// OrderItems maps the snapshot to a jsonb column.
type OrderItems []OrderItem

func (i OrderItems) Value() (driver.Value, error) {
	if i == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (i *OrderItems) Scan(src any) error {
	if src == nil {
		*i = OrderItems{}
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, i)
	case string:
		return json.Unmarshal([]byte(v), i)
	default:
		return fmt.Errorf("OrderItems: unsupported Scan type %T", src)
	}
}
