package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/narekgrig/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Well-known sequence names.
const (
	Orders   = "orders"
	Products = "products"
)

// Counters is the storage surface the allocator needs. Implementations must
// be bound to the transaction that also persists the entity taking the ID:
// the allocator never reserves an ID outside that transaction.
type Counters interface {
	// ForUpdate loads the counter under a write lock, or nil when absent.
	ForUpdate(ctx context.Context, name string) (*models.Counter, error)
	Insert(ctx context.Context, counter *models.Counter) error
	Save(ctx context.Context, counter *models.Counter) error
}

// Next allocates the next value of the named sequence and returns it as a
// zero-padded 7-digit ID. Counters are created lazily at 1. Because the read
// takes a row lock, two concurrent transactions can never both commit the
// same value; the loser aborts and the caller retries from fresh reads.
func Next(ctx context.Context, counters Counters, name string) (string, error) {
	if name == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "sequence name required")
	}

	counter, err := counters.ForUpdate(ctx, name)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load counter")
	}

	if counter == nil {
		counter = &models.Counter{Name: name, Count: 1}
		if err := counters.Insert(ctx, counter); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create counter")
		}
		return FormatID(counter.Count), nil
	}

	counter.Count++
	if err := counters.Save(ctx, counter); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance counter")
	}
	return FormatID(counter.Count), nil
}

// FormatID renders a sequence value as the human-readable 7-digit form.
func FormatID(n int64) string {
	return fmt.Sprintf("%07d", n)
}

// Repository implements Counters over a gorm transaction handle.
type Repository struct {
	tx *gorm.DB
}

// NewRepository binds the counter store to the given transaction.
func NewRepository(tx *gorm.DB) *Repository {
	return &Repository{tx: tx}
}

func (r *Repository) ForUpdate(ctx context.Context, name string) (*models.Counter, error) {
	var counter models.Counter
	err := r.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &counter, nil
}

func (r *Repository) Insert(ctx context.Context, counter *models.Counter) error {
	return r.tx.WithContext(ctx).Create(counter).Error
}

func (r *Repository) Save(ctx context.Context, counter *models.Counter) error {
	return r.tx.WithContext(ctx).
		Model(&models.Counter{}).
		Where("name = ?", counter.Name).
		Update("count", counter.Count).Error
}
