package orders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/narekgrig/shopfront-backend/internal/catalog"
	"github.com/narekgrig/shopfront-backend/internal/identity"
	"github.com/narekgrig/shopfront-backend/internal/pricing"
	"github.com/narekgrig/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
	"github.com/narekgrig/shopfront-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubReconciler struct {
	lines []catalog.ReconciledLine
	err   error
	calls int
}

func (s *stubReconciler) Reconcile(ctx context.Context, refs []catalog.LineRef) ([]catalog.ReconciledLine, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.lines, nil
}

type stubProfiles struct {
	firstShop      bool
	findErr        error
	forUpdate      []bool
	forUpdateCalls int
	consumeCalls   int
	consumeResult  bool

	// flipAfterFind makes the profile flag drop after the first load,
	// simulating a concurrent order consuming the discount.
	flipAfterFind bool
	findCalls     int
}

func (s *stubProfiles) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	firstShop := s.firstShop
	if s.flipAfterFind && s.findCalls > 1 {
		firstShop = false
	}
	return &models.User{ID: id, FirstShop: firstShop}, nil
}

func (s *stubProfiles) FirstShopForUpdate(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	i := s.forUpdateCalls
	s.forUpdateCalls++
	if i < len(s.forUpdate) {
		return s.forUpdate[i], nil
	}
	return s.firstShop, nil
}

func (s *stubProfiles) ConsumeFirstShop(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	s.consumeCalls++
	return s.consumeResult, nil
}

type stubOrders struct {
	inserted []*models.Order
	err      error
}

func (s *stubOrders) Insert(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, order)
	return nil
}

type stubIDs struct {
	next int64
}

func (s *stubIDs) NextOrderID(ctx context.Context, tx *gorm.DB) (string, error) {
	s.next++
	return fmt.Sprintf("%07d", s.next), nil
}

func availableLine(productID string, quantity, price, discount int) catalog.ReconciledLine {
	return catalog.ReconciledLine{
		ProductID:       productID,
		VariantID:       models.DefaultVariantID,
		Name:            "product " + productID,
		Quantity:        quantity,
		UnitPrice:       price,
		DiscountPercent: discount,
		InStock:         true,
		IsAvailable:     true,
	}
}

func goneLine(productID, reason string) catalog.ReconciledLine {
	return catalog.ReconciledLine{
		ProductID: productID,
		VariantID: models.DefaultVariantID,
		Reason:    reason,
	}
}

func newTestService(t *testing.T, rec *stubReconciler, profiles *stubProfiles, store *stubOrders, verified bool) Service {
	t.Helper()
	svc, err := NewService(Options{
		Tx:         stubTx{},
		Reconciler: rec,
		Profiles:   profiles,
		Orders:     store,
		IDs:        &stubIDs{},
		Verifier:   identity.Static{"user-1": verified},
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Attempts:   3,
	})
	require.NoError(t, err)
	return svc
}

func guestInput(lines ...LineInput) CreateInput {
	return CreateInput{
		Lines:          lines,
		ShippingMethod: pricing.ShippingStandard,
		PaymentMethod:  PaymentCash,
	}
}

func TestCreateGuestOrder(t *testing.T) {
	t.Parallel()

	rec := &stubReconciler{lines: []catalog.ReconciledLine{availableLine("0000001", 1, 10000, 0)}}
	store := &stubOrders{}
	svc := newTestService(t, rec, &stubProfiles{}, store, false)

	receipt, err := svc.Create(context.Background(), guestInput(
		LineInput{ProductID: "0000001", VariantID: "default", Quantity: 1},
	))
	require.NoError(t, err)

	assert.Equal(t, "0000001", receipt.OrderID)
	assert.Equal(t, 10000, receipt.Subtotal)
	assert.Equal(t, 0, receipt.ShippingCost, "payable above the free-shipping threshold")
	assert.Equal(t, 10000, receipt.Total)
	assert.Equal(t, 1000, receipt.TotalSavings)
	assert.Equal(t, 300, receipt.BonusAmount)
	assert.Equal(t, string(pricing.PathNone), receipt.DiscountPath)
	assert.Equal(t, []string{models.DiscountFreeShipping}, receipt.DiscountsApplied)

	require.Len(t, store.inserted, 1)
	order := store.inserted[0]
	assert.Equal(t, models.GuestUserID, order.UserID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 10000, order.Items[0].FinalUnitPrice)
}

func TestCreateConsumesFirstShopOnce(t *testing.T) {
	t.Parallel()

	rec := &stubReconciler{lines: []catalog.ReconciledLine{availableLine("0000001", 1, 10000, 0)}}
	profiles := &stubProfiles{firstShop: true, consumeResult: true}
	store := &stubOrders{}
	svc := newTestService(t, rec, profiles, store, true)

	receipt, err := svc.Create(context.Background(), CreateInput{
		UserID:         "user-1",
		Lines:          []LineInput{{ProductID: "0000001", Quantity: 1}},
		ShippingMethod: pricing.ShippingStandard,
		PaymentMethod:  PaymentCard,
	})
	require.NoError(t, err)

	assert.True(t, receipt.FirstShopConsumed)
	assert.Equal(t, string(pricing.PathFirstShop), receipt.DiscountPath)
	assert.Equal(t, 8000, receipt.Total, "20 percent off 10000, free shipping")
	assert.Equal(t, 1, profiles.forUpdateCalls, "flag re-read under lock exactly once")
	assert.Equal(t, 1, profiles.consumeCalls, "flag consumed exactly once")
	assert.Contains(t, receipt.DiscountsApplied, models.DiscountFirstShop)
}

func TestCreateRetriesWhenEligibilityRaces(t *testing.T) {
	t.Parallel()

	rec := &stubReconciler{lines: []catalog.ReconciledLine{availableLine("0000001", 1, 10000, 0)}}
	profiles := &stubProfiles{
		firstShop:     true,
		flipAfterFind: true,
		forUpdate:     []bool{false},
	}
	store := &stubOrders{}
	svc := newTestService(t, rec, profiles, store, true)

	receipt, err := svc.Create(context.Background(), CreateInput{
		UserID:         "user-1",
		Lines:          []LineInput{{ProductID: "0000001", Quantity: 1}},
		ShippingMethod: pricing.ShippingStandard,
		PaymentMethod:  PaymentCard,
	})
	require.NoError(t, err)

	// First attempt saw the flag, lost the race inside the transaction, and
	// the second attempt repriced from fresh reads without the discount.
	assert.False(t, receipt.FirstShopConsumed)
	assert.Equal(t, string(pricing.PathNone), receipt.DiscountPath)
	assert.Equal(t, 10000, receipt.Total)
	assert.Equal(t, 2, rec.calls, "each attempt re-reconciles")
	assert.Equal(t, 0, profiles.consumeCalls)
	require.Len(t, store.inserted, 1)
}

func TestCreateFailsWhenCartEmptiesOut(t *testing.T) {
	t.Parallel()

	rec := &stubReconciler{lines: []catalog.ReconciledLine{
		goneLine("0000001", catalog.ReasonProductGone),
		goneLine("0000002", catalog.ReasonOutOfStock),
	}}
	store := &stubOrders{}
	svc := newTestService(t, rec, &stubProfiles{}, store, false)

	_, err := svc.Create(context.Background(), guestInput(
		LineInput{ProductID: "0000001", Quantity: 1},
		LineInput{ProductID: "0000002", Quantity: 1},
	))
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeUnavailable, appErr.Code())
	assert.Empty(t, store.inserted)
}

func TestCreateKeepsAvailableLinesAndReportsDropped(t *testing.T) {
	t.Parallel()

	rec := &stubReconciler{lines: []catalog.ReconciledLine{
		availableLine("0000001", 2, 3000, 0),
		goneLine("0000002", catalog.ReasonOutOfStock),
	}}
	store := &stubOrders{}
	svc := newTestService(t, rec, &stubProfiles{}, store, false)

	receipt, err := svc.Create(context.Background(), guestInput(
		LineInput{ProductID: "0000001", Quantity: 2},
		LineInput{ProductID: "0000002", Quantity: 1},
	))
	require.NoError(t, err)

	assert.Equal(t, 6000, receipt.Subtotal)
	require.Len(t, receipt.DroppedLines, 1)
	assert.Equal(t, "0000002", receipt.DroppedLines[0].ProductID)
	assert.Equal(t, catalog.ReasonOutOfStock, receipt.DroppedLines[0].Reason)
}

func TestCreateAcceptsEveryPaymentMethod(t *testing.T) {
	t.Parallel()

	for _, method := range []string{PaymentCard, PaymentCash, PaymentIdram} {
		method := method
		t.Run(method, func(t *testing.T) {
			t.Parallel()

			rec := &stubReconciler{lines: []catalog.ReconciledLine{availableLine("0000001", 1, 10000, 0)}}
			store := &stubOrders{}
			svc := newTestService(t, rec, &stubProfiles{}, store, false)

			receipt, err := svc.Create(context.Background(), CreateInput{
				Lines:          []LineInput{{ProductID: "0000001", Quantity: 1}},
				ShippingMethod: pricing.ShippingStandard,
				PaymentMethod:  method,
			})
			require.NoError(t, err)
			assert.NotEmpty(t, receipt.OrderID)

			require.Len(t, store.inserted, 1)
			assert.Equal(t, method, store.inserted[0].PaymentMethod)
		})
	}
}

func TestCreateValidatesInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubReconciler{}, &stubProfiles{}, &stubOrders{}, false)

	cases := map[string]CreateInput{
		"empty cart": {
			ShippingMethod: pricing.ShippingStandard,
			PaymentMethod:  PaymentCard,
		},
		"zero quantity": guestInput(LineInput{ProductID: "0000001", Quantity: 0}),
		"unknown shipping": {
			Lines:          []LineInput{{ProductID: "0000001", Quantity: 1}},
			ShippingMethod: "drone",
			PaymentMethod:  PaymentCard,
		},
		"unknown payment": {
			Lines:          []LineInput{{ProductID: "0000001", Quantity: 1}},
			ShippingMethod: pricing.ShippingStandard,
			PaymentMethod:  "barter",
		},
	}
	for name, input := range cases {
		input := input
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Create(context.Background(), input)
			var appErr *pkgerrors.Error
			require.True(t, errors.As(err, &appErr), "expected app error, got %v", err)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestQuoteDoesNotCommit(t *testing.T) {
	t.Parallel()

	rec := &stubReconciler{lines: []catalog.ReconciledLine{availableLine("0000001", 1, 1000, 15)}}
	profiles := &stubProfiles{firstShop: true}
	store := &stubOrders{}
	svc := newTestService(t, rec, profiles, store, true)

	quote, err := svc.Quote(context.Background(), QuoteInput{
		UserID: "user-1",
		Lines:  []LineInput{{ProductID: "0000001", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1000, quote.Subtotal)
	assert.Equal(t, string(pricing.PathFirstShop), quote.DiscountPath)
	require.Len(t, quote.Lines, 1)
	assert.Equal(t, 150, quote.Lines[0].MarkdownAmount)
	assert.Equal(t, 50, quote.Lines[0].FirstShopDiscount, "fill to the 20 percent target")
	assert.Equal(t, 800, quote.Lines[0].FinalUnitPrice)
	assert.Equal(t, 1000, quote.ShippingCost, "payable below the free-shipping threshold")
	assert.Equal(t, 1800, quote.Total)

	assert.Empty(t, store.inserted, "quotes never write orders")
	assert.Equal(t, 0, profiles.forUpdateCalls)
	assert.Equal(t, 0, profiles.consumeCalls)
}

func TestCreateGivesUpAfterBoundedRetries(t *testing.T) {
	t.Parallel()

	rec := &stubReconciler{lines: []catalog.ReconciledLine{availableLine("0000001", 1, 10000, 0)}}
	profiles := &stubProfiles{
		firstShop: true,
		forUpdate: []bool{false, false, false},
	}
	store := &stubOrders{}
	svc := newTestService(t, rec, profiles, store, true)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:         "user-1",
		Lines:          []LineInput{{ProductID: "0000001", Quantity: 1}},
		ShippingMethod: pricing.ShippingStandard,
		PaymentMethod:  PaymentCard,
	})
	require.Error(t, err)

	var appErr *pkgerrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	assert.Equal(t, 3, rec.calls)
	assert.Empty(t, store.inserted)
}
