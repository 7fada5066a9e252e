package orders

import (
	"context"

	"github.com/narekgrig/shopfront-backend/internal/sequence"
	"github.com/narekgrig/shopfront-backend/internal/users"
	"github.com/narekgrig/shopfront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// GormProfiles adapts the users repository to the committer's tx-scoped calls.
type GormProfiles struct {
	Repo *users.Repository
}

func (g GormProfiles) FindByID(ctx context.Context, id string) (*models.User, error) {
	return g.Repo.FindByID(ctx, id)
}

func (g GormProfiles) FirstShopForUpdate(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	return g.Repo.WithTx(tx).FirstShopForUpdate(ctx, id)
}

func (g GormProfiles) ConsumeFirstShop(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	return g.Repo.WithTx(tx).ConsumeFirstShop(ctx, id)
}

// GormOrders adapts the orders repository likewise.
type GormOrders struct {
	Repo *Repository
}

func (g GormOrders) Insert(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	return g.Repo.WithTx(tx).Insert(ctx, order)
}

// GormIDs allocates order IDs from the row-locked counter, inside the commit
// transaction so the sequence stays gapless.
type GormIDs struct{}

func (GormIDs) NextOrderID(ctx context.Context, tx *gorm.DB) (string, error) {
	return sequence.Next(ctx, sequence.NewRepository(tx), sequence.Orders)
}
