package users

import (
	"context"
	"errors"

	"github.com/narekgrig/shopfront-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no profile exists for the given ID.
var ErrNotFound = gorm.ErrRecordNotFound

// Repository encapsulates user-profile persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the profile.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FirstShopForUpdate re-reads the eligibility flag under a row lock. Order
// commit calls this inside its transaction so a concurrent order cannot
// consume the discount between pricing and commit.
func (r *Repository) FirstShopForUpdate(ctx context.Context, id string) (bool, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "first_shop").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return false, err
	}
	return user.FirstShop, nil
}

// ConsumeFirstShop flips the one-time flag. It reports whether this call was
// the one that consumed it.
func (r *Repository) ConsumeFirstShop(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND first_shop = ?", id, true).
		Update("first_shop", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Upsert creates or refreshes the basic profile fields.
func (r *Repository) Upsert(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "phone", "updated_at"}),
		}).
		Create(user).Error
}

// IsNotFound reports whether err means the profile does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
