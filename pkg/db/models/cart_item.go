package models

import "time"

// CartItem is one persisted account-cart line. The (user, product, variant)
// triple is the line identity and is unique within a cart.
type CartItem struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    string `gorm:"column:user_id;type:text;not null;uniqueIndex:idx_cart_items_line,priority:1"`
	ProductID string `gorm:"column:product_id;type:text;not null;uniqueIndex:idx_cart_items_line,priority:2"`
	VariantID string `gorm:"column:variant_id;type:text;not null;uniqueIndex:idx_cart_items_line,priority:3"`
	Quantity  int    `gorm:"column:quantity;not null"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
