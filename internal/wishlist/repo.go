package wishlist

import (
	"context"

	"github.com/narekgrig/shopfront-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists wishlist likes.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns the liked product IDs in insertion order.
func (r *Repository) List(ctx context.Context, userID string) ([]string, error) {
	var items []models.WishlistItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids, nil
}

// Add records a like. Liking the same product twice is a no-op.
func (r *Repository) Add(ctx context.Context, userID, productID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.WishlistItem{UserID: userID, ProductID: productID}).Error
}

// Remove deletes a like. Removing an absent like is not an error.
func (r *Repository) Remove(ctx context.Context, userID, productID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error
}

// MergeInto adds the given products to the user's wishlist inside an existing
// transaction, skipping ones already liked. Guest sign-in merge uses this.
func (r *Repository) MergeInto(ctx context.Context, tx *gorm.DB, userID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	items := make([]models.WishlistItem, 0, len(productIDs))
	for _, id := range productIDs {
		items = append(items, models.WishlistItem{UserID: userID, ProductID: id})
	}
	return tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&items).Error
}
