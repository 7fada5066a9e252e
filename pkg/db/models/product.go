package models

import "time"

// DefaultVariantID marks a line that does not target a concrete variant.
const DefaultVariantID = "default"

// Product is the canonical catalog record. Price, discount, and stock on this
// row apply when the product carries no variants.
type Product struct {
	ID              string  `gorm:"column:id;type:text;primaryKey"`
	Name            string  `gorm:"column:name;not null"`
	Brand           *string `gorm:"column:brand"`
	Price           int     `gorm:"column:price;not null"`
	DiscountPercent int     `gorm:"column:discount_percent;not null;default:0"`
	InStock         bool    `gorm:"column:in_stock;not null;default:true"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductVariant carries per-variant price/stock truth.
type ProductVariant struct {
	ProductID       string  `gorm:"column:product_id;type:text;primaryKey"`
	VariantID       string  `gorm:"column:variant_id;type:text;primaryKey"`
	Price           int     `gorm:"column:price;not null"`
	DiscountPercent int     `gorm:"column:discount_percent;not null;default:0"`
	InStock         bool    `gorm:"column:in_stock;not null;default:true"`
	Attributes      JSONMap `gorm:"column:attributes;type:jsonb"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
