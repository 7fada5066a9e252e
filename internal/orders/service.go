package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/narekgrig/shopfront-backend/internal/catalog"
	"github.com/narekgrig/shopfront-backend/internal/identity"
	"github.com/narekgrig/shopfront-backend/internal/notify"
	"github.com/narekgrig/shopfront-backend/internal/pricing"
	"github.com/narekgrig/shopfront-backend/internal/users"
	"github.com/narekgrig/shopfront-backend/pkg/db"
	"github.com/narekgrig/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/narekgrig/shopfront-backend/pkg/errors"
	"github.com/narekgrig/shopfront-backend/pkg/logger"
	"github.com/narekgrig/shopfront-backend/pkg/metrics"
	"gorm.io/gorm"
)

// errEligibilityChanged aborts the transaction when the locked first-shop
// re-read disagrees with the priced breakdown. The attempt loop then
// re-reconciles and re-prices from fresh reads.
var errEligibilityChanged = errors.New("first-shop eligibility changed during commit")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type reconciler interface {
	Reconcile(ctx context.Context, refs []catalog.LineRef) ([]catalog.ReconciledLine, error)
}

// profileStore is the slice of the users repository the committer needs. The
// tx-taking calls run inside the commit transaction.
type profileStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FirstShopForUpdate(ctx context.Context, tx *gorm.DB, id string) (bool, error)
	ConsumeFirstShop(ctx context.Context, tx *gorm.DB, id string) (bool, error)
}

type orderStore interface {
	Insert(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

type idAllocator interface {
	NextOrderID(ctx context.Context, tx *gorm.DB) (string, error)
}

type orderNotifier interface {
	OrderCreated(ctx context.Context, event notify.OrderEvent)
}

// Service finalizes carts into committed orders and prices them on demand.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*Receipt, error)
	Quote(ctx context.Context, input QuoteInput) (*Quote, error)
}

type service struct {
	tx         txRunner
	reconciler reconciler
	profiles   profileStore
	orders     orderStore
	ids        idAllocator
	verifier   identity.Provider
	notifier   orderNotifier
	metrics    *metrics.OrderMetrics
	logg       *logger.Logger
	attempts   int
}

// Options wires the committer's collaborators.
type Options struct {
	Tx         txRunner
	Reconciler reconciler
	Profiles   profileStore
	Orders     orderStore
	IDs        idAllocator
	Verifier   identity.Provider
	Notifier   orderNotifier
	Metrics    *metrics.OrderMetrics
	Logger     *logger.Logger
	Attempts   int
}

// NewService builds the order committer.
func NewService(opts Options) (Service, error) {
	switch {
	case opts.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case opts.Reconciler == nil:
		return nil, fmt.Errorf("catalog reconciler required")
	case opts.Profiles == nil:
		return nil, fmt.Errorf("profile store required")
	case opts.Orders == nil:
		return nil, fmt.Errorf("order store required")
	case opts.IDs == nil:
		return nil, fmt.Errorf("id allocator required")
	case opts.Verifier == nil:
		return nil, fmt.Errorf("identity provider required")
	case opts.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 3
	}
	return &service{
		tx:         opts.Tx,
		reconciler: opts.Reconciler,
		profiles:   opts.Profiles,
		orders:     opts.Orders,
		ids:        opts.IDs,
		verifier:   opts.Verifier,
		notifier:   opts.Notifier,
		metrics:    opts.Metrics,
		logg:       opts.Logger,
		attempts:   opts.Attempts,
	}, nil
}

// Create reconciles the submitted cart against the live catalog, prices it,
// and commits the order atomically with its sequential ID and, when granted,
// the one-time first-shop flag flip. Contended attempts restart from fresh
// reads up to the configured bound.
func (s *service) Create(ctx context.Context, input CreateInput) (*Receipt, error) {
	if err := validateInput(input); err != nil {
		s.metrics.IncFailed()
		return nil, err
	}

	var receipt *Receipt
	var lastErr error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			s.metrics.IncRetry()
		}
		receipt, lastErr = s.tryCommit(ctx, input)
		if lastErr == nil {
			break
		}
		if !isRetryable(lastErr) {
			s.metrics.IncFailed()
			return nil, lastErr
		}
	}
	if lastErr != nil {
		s.metrics.IncFailed()
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, lastErr, "order commit kept conflicting, try again")
	}

	s.metrics.IncCreated(receipt.DiscountPath)
	s.metrics.ObserveTotal(receipt.Total)
	s.announce(ctx, input, receipt)
	return receipt, nil
}

// evaluation is one reconcile-and-price pass over fresh reads.
type evaluation struct {
	lines   []pricing.CartLine
	dropped []DroppedLine
	result  pricing.Result
}

// evaluate reconciles the submitted lines against the live catalog and prices
// whatever survives.
func (s *service) evaluate(ctx context.Context, userID string, lines []LineInput, method pricing.ShippingMethod) (*evaluation, error) {
	eligible, err := s.firstShopEligible(ctx, userID)
	if err != nil {
		return nil, err
	}

	refs := make([]catalog.LineRef, 0, len(lines))
	for _, line := range lines {
		refs = append(refs, catalog.LineRef{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
		})
	}
	reconciled, err := s.reconciler.Reconcile(ctx, refs)
	if err != nil {
		return nil, err
	}

	eval := &evaluation{}
	for _, line := range reconciled {
		if !line.IsAvailable {
			eval.dropped = append(eval.dropped, DroppedLine{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Reason:    line.Reason,
			})
			continue
		}
		eval.lines = append(eval.lines, pricing.CartLine{
			ProductID:       line.ProductID,
			VariantID:       line.VariantID,
			Name:            line.Name,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
		})
	}
	if len(eval.lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "no cart line is still available")
	}

	eval.result = pricing.Price(eval.lines, pricing.SelectAll(eval.lines), pricing.Context{
		IsGuest:             userID == "",
		IsEmailVerified:     eligible,
		IsFirstShopEligible: eligible,
		ShippingMethod:      method,
	})
	return eval, nil
}

// tryCommit is one full pass: fresh eligibility, fresh reconcile, fresh
// price, one transaction.
func (s *service) tryCommit(ctx context.Context, input CreateInput) (*Receipt, error) {
	eval, err := s.evaluate(ctx, input.UserID, input.Lines, input.ShippingMethod)
	if err != nil {
		return nil, err
	}
	result := eval.result

	order := buildOrder(input, eval.lines, result)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if result.FirstShopDiscount > 0 {
			// Re-read under lock: pricing saw the flag outside the
			// transaction, and a concurrent order may have consumed it.
			stillEligible, err := s.profiles.FirstShopForUpdate(ctx, tx, input.UserID)
			if err != nil {
				return err
			}
			if !stillEligible {
				return errEligibilityChanged
			}
		}

		id, err := s.ids.NextOrderID(ctx, tx)
		if err != nil {
			return err
		}
		order.ID = id

		if err := s.orders.Insert(ctx, tx, order); err != nil {
			return err
		}

		if result.FirstShopDiscount > 0 {
			consumed, err := s.profiles.ConsumeFirstShop(ctx, tx, input.UserID)
			if err != nil {
				return err
			}
			if !consumed {
				return errEligibilityChanged
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return buildReceipt(order, result, eval.dropped), nil
}

// Quote prices the submitted cart without committing anything. Guests get a
// quote too; they just never qualify for the first-shop path.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*Quote, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, line := range input.Lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required on every line")
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
	}
	method := input.ShippingMethod
	if method == "" {
		method = pricing.ShippingStandard
	}
	switch method {
	case pricing.ShippingStandard, pricing.ShippingExpress:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping method")
	}

	eval, err := s.evaluate(ctx, input.UserID, input.Lines, method)
	if err != nil {
		return nil, err
	}
	return buildQuote(eval), nil
}

// firstShopEligible loads the profile flag and the live verification flag.
// An identity outage degrades to not-eligible instead of failing checkout.
func (s *service) firstShopEligible(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if users.IsNotFound(err) {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "user profile not found")
		}
		return false, err
	}
	if !profile.FirstShop {
		return false, nil
	}

	verified, err := s.verifier.EmailVerified(ctx, userID)
	if err != nil {
		s.logg.Warn(ctx, "identity lookup failed, pricing without first-shop discount")
		return false, nil
	}
	return pricing.FirstShopEligible(false, profile.FirstShop, verified), nil
}

func (s *service) announce(ctx context.Context, input CreateInput, receipt *Receipt) {
	if s.notifier == nil {
		return
	}
	event := notify.OrderEvent{
		OrderID:       receipt.OrderID,
		Total:         receipt.Total,
		ItemCount:     len(input.Lines) - len(receipt.DroppedLines),
		CustomerName:  strings.TrimSpace(input.Customer.FirstName + " " + input.Customer.LastName),
		CustomerEmail: input.Customer.Email,
		DiscountPath:  receipt.DiscountPath,
	}
	// Detach from the request: notification outlives the HTTP response.
	go s.notifier.OrderCreated(context.WithoutCancel(ctx), event)
}

func validateInput(input CreateInput) error {
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, line := range input.Lines {
		if strings.TrimSpace(line.ProductID) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "product id is required on every line")
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
	}
	switch input.ShippingMethod {
	case pricing.ShippingStandard, pricing.ShippingExpress:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown shipping method")
	}
	switch input.PaymentMethod {
	case PaymentCard, PaymentCash, PaymentIdram:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	return nil
}

func isRetryable(err error) bool {
	return errors.Is(err, errEligibilityChanged) || db.IsRetryableTxError(err)
}

func buildOrder(input CreateInput, lines []pricing.CartLine, result pricing.Result) *models.Order {
	items := make(models.OrderItems, 0, len(lines))
	for _, line := range lines {
		priced := result.Lines[line.Key()]
		items = append(items, models.OrderItem{
			ProductID:         priced.ProductID,
			VariantID:         priced.VariantID,
			Name:              priced.Name,
			Quantity:          priced.Quantity,
			UnitPrice:         priced.UnitPrice,
			DiscountPercent:   priced.DiscountPercent,
			MarkdownPerUnit:   priced.MarkdownPerUnit,
			MarkdownAmount:    priced.MarkdownAmount,
			FirstShopDiscount: priced.FirstShopDiscount,
			ExtraDiscount:     priced.ExtraDiscount,
			FinalUnitPrice:    priced.FinalUnitPrice,
		})
	}

	userID := input.UserID
	if userID == "" {
		userID = models.GuestUserID
	}

	return &models.Order{
		UserID:            userID,
		Items:             items,
		ShippingMethod:    string(input.ShippingMethod),
		PaymentMethod:     input.PaymentMethod,
		Subtotal:          result.Subtotal,
		ShippingCost:      result.ShippingCost,
		Total:             result.Total,
		TotalSavings:      result.TotalSavings,
		BonusAmount:       result.BonusAmount,
		Discounts:         discountsApplied(result),
		Status:            models.OrderStatusPending,
		CustomerFirstName: input.Customer.FirstName,
		CustomerLastName:  input.Customer.LastName,
		CustomerPhone:     input.Customer.Phone,
		DeliveryAddress:   input.Customer.Address,
	}
}

func discountsApplied(result pricing.Result) []string {
	var applied []string
	if result.ProductMarkdown > 0 {
		applied = append(applied, models.DiscountProductMarkdown)
	}
	if result.FirstShopDiscount > 0 {
		applied = append(applied, models.DiscountFirstShop)
	}
	if result.ExtraDiscount > 0 {
		applied = append(applied, models.DiscountExtra)
	}
	if result.ShippingSavings > 0 {
		applied = append(applied, models.DiscountFreeShipping)
	}
	return applied
}

func buildQuote(eval *evaluation) *Quote {
	result := eval.result
	quote := &Quote{
		Subtotal:         result.Subtotal,
		ShippingCost:     result.ShippingCost,
		Total:            result.Total,
		TotalSavings:     result.TotalSavings,
		BonusAmount:      result.BonusAmount,
		DiscountPath:     string(result.DiscountPath),
		DiscountsApplied: discountsApplied(result),
		DroppedLines:     eval.dropped,
	}
	for _, line := range eval.lines {
		priced := result.Lines[line.Key()]
		quote.Lines = append(quote.Lines, QuoteLine{
			ProductID:         priced.ProductID,
			VariantID:         priced.VariantID,
			Name:              priced.Name,
			Quantity:          priced.Quantity,
			UnitPrice:         priced.UnitPrice,
			DiscountPercent:   priced.DiscountPercent,
			MarkdownAmount:    priced.MarkdownAmount,
			FirstShopDiscount: priced.FirstShopDiscount,
			ExtraDiscount:     priced.ExtraDiscount,
			FinalUnitPrice:    priced.FinalUnitPrice,
		})
	}
	return quote
}

func buildReceipt(order *models.Order, result pricing.Result, dropped []DroppedLine) *Receipt {
	return &Receipt{
		OrderID:           order.ID,
		Subtotal:          order.Subtotal,
		ShippingCost:      order.ShippingCost,
		Total:             order.Total,
		TotalSavings:      order.TotalSavings,
		BonusAmount:       order.BonusAmount,
		DiscountPath:      string(result.DiscountPath),
		DiscountsApplied:  order.Discounts,
		DroppedLines:      dropped,
		FirstShopConsumed: result.FirstShopDiscount > 0,
	}
}
