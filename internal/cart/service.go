package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/narekgrig/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
	"github.com/narekgrig/shopfront-backend/pkg/logger"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type wishlistMerger interface {
	MergeInto(ctx context.Context, tx *gorm.DB, userID string, productIDs []string) error
}

// Service owns account carts, guest carts, and the sign-in merge between them.
type Service interface {
	Get(ctx context.Context, userID string) ([]Line, error)
	SetItem(ctx context.Context, userID string, line Line) error
	RemoveItem(ctx context.Context, userID, productID, variantID string) error
	Clear(ctx context.Context, userID string) error

	GetGuest(ctx context.Context, sessionID string) (*GuestState, error)
	SaveGuestCart(ctx context.Context, sessionID string, lines []Line) error
	SaveGuestWishlist(ctx context.Context, sessionID string, productIDs []string) error

	MergeGuestState(ctx context.Context, userID, sessionID string) ([]Line, error)
}

type service struct {
	repo     *Repository
	guests   *GuestStore
	wishlist wishlistMerger
	tx       txRunner
	logg     *logger.Logger
}

func NewService(repo *Repository, guests *GuestStore, wishlist wishlistMerger, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if guests == nil {
		return nil, fmt.Errorf("guest store required")
	}
	if wishlist == nil {
		return nil, fmt.Errorf("wishlist merger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, guests: guests, wishlist: wishlist, tx: tx, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, userID string) ([]Line, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toLines(items), nil
}

// SetItem sets the quantity for one line. A non-positive quantity removes it.
func (s *service) SetItem(ctx context.Context, userID string, line Line) error {
	line = normalizeLine(line)
	if err := validateLine(line); err != nil {
		return err
	}
	if line.Quantity <= 0 {
		return s.repo.Remove(ctx, userID, line.ProductID, line.VariantID)
	}
	return s.repo.Upsert(ctx, &models.CartItem{
		UserID:    userID,
		ProductID: line.ProductID,
		VariantID: line.VariantID,
		Quantity:  line.Quantity,
	})
}

func (s *service) RemoveItem(ctx context.Context, userID, productID, variantID string) error {
	if strings.TrimSpace(productID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if variantID == "" {
		variantID = models.DefaultVariantID
	}
	return s.repo.Remove(ctx, userID, productID, variantID)
}

func (s *service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}

func (s *service) GetGuest(ctx context.Context, sessionID string) (*GuestState, error) {
	return s.guests.Load(ctx, sessionID)
}

func (s *service) SaveGuestCart(ctx context.Context, sessionID string, lines []Line) error {
	normalized := make([]Line, 0, len(lines))
	for _, line := range lines {
		line = normalizeLine(line)
		if err := validateLine(line); err != nil {
			return err
		}
		normalized = append(normalized, line)
	}
	return s.guests.SaveCart(ctx, sessionID, normalized)
}

func (s *service) SaveGuestWishlist(ctx context.Context, sessionID string, productIDs []string) error {
	return s.guests.SaveWishlist(ctx, sessionID, productIDs)
}

// MergeGuestState folds the guest snapshot into the account and then clears
// the guest keys. The clear happens only after the merge commits, so a crash
// in between re-runs the merge rather than losing the guest cart. Re-running
// can double quantities for colliding lines; the cart remains editable and
// pricing re-validates everything, so this is accepted.
func (s *service) MergeGuestState(ctx context.Context, userID, sessionID string) ([]Line, error) {
	guest, err := s.guests.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load guest state")
	}

	account, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := account
	if len(guest.Lines) > 0 || len(guest.Wishlist) > 0 {
		merged = MergeCarts(account, guest.Lines)
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.repo.WithTx(tx).Replace(ctx, userID, merged); err != nil {
				return err
			}
			return s.wishlist.MergeInto(ctx, tx, userID, guest.Wishlist)
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.guests.Clear(ctx, sessionID); err != nil {
		s.logg.Error(ctx, "clear guest state after merge", err)
	}
	return merged, nil
}

func normalizeLine(line Line) Line {
	if line.VariantID == "" {
		line.VariantID = models.DefaultVariantID
	}
	return line
}

func validateLine(line Line) error {
	if strings.TrimSpace(line.ProductID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return nil
}

func toLines(items []models.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}
