package models

import "time"

// User is the document-store side of a customer profile. The live
// email-verification flag is owned by the identity provider, not this row.
type User struct {
	ID        string  `gorm:"column:id;type:text;primaryKey"`
	Email     string  `gorm:"column:email;type:text;not null;uniqueIndex"`
	FirstName string  `gorm:"column:first_name;not null;default:''"`
	LastName  string  `gorm:"column:last_name;not null;default:''"`
	Phone     *string `gorm:"column:phone"`

	// FirstShop stays true until the first order that applies the first-shop
	// discount commits; it is never flipped back.
	FirstShop bool `gorm:"column:first_shop;not null;default:true"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
