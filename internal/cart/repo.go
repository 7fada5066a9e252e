package cart

import (
	"context"

	"github.com/narekgrig/shopfront-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists account-cart lines.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// List returns the cart lines for a user in insertion order.
func (r *Repository) List(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert sets the quantity for one line, creating it if absent.
func (r *Repository) Upsert(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "variant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(item).Error
}

// Remove deletes one line. Removing an absent line is not an error.
func (r *Repository) Remove(ctx context.Context, userID, productID, variantID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND variant_id = ?", userID, productID, variantID).
		Delete(&models.CartItem{}).Error
}

// Clear drops every line in the user's cart.
func (r *Repository) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}

// Replace swaps the whole cart for the given lines in one pass. Used by the
// guest merge, which computes the merged cart outside the database.
func (r *Repository) Replace(ctx context.Context, userID string, lines []Line) error {
	if err := r.Clear(ctx, userID); err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	items := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.CartItem{
			UserID:    userID,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		})
	}
	return r.db.WithContext(ctx).Create(&items).Error
}
