package models

import "time"

// WishlistItem records a liked product. Duplicates are ignored on insert.
type WishlistItem struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    string `gorm:"column:user_id;type:text;not null;uniqueIndex:idx_wishlist_items_like,priority:1"`
	ProductID string `gorm:"column:product_id;type:text;not null;uniqueIndex:idx_wishlist_items_like,priority:2"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
