package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/cartd/internal/domain/coupon"
	"github.com/xenking/cartd/internal/domain/product"
)

// ErrOutOfStock is returned when a product has no remaining capacity for
// this cart.
var ErrOutOfStock = errors.New("out of stock")

// StockExceededError indicates a requested quantity above the product's
// stock.
type StockExceededError struct {
	ProductID string
	Stock     int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("only %d units of product %s in stock", e.Stock, e.ProductID)
}

// Store persists cart snapshots. Saves are fire-and-forget from the
// controller's point of view: a failure is logged but never rolls back the
// in-memory mutation.
type Store interface {
	SaveCart(ctx context.Context, c Cart) error
}

// Config holds cart policy knobs.
type Config struct {
	// ClearCouponOnClear also drops the selected coupon when Clear empties
	// the cart. The default keeps the coupon until it is explicitly changed
	// or cleared.
	ClearCouponOnClear bool
}

// Service owns a single cart and enforces its invariants: quantities stay
// within stock, no zero-quantity items, one item per product ID, at most one
// selected coupon gated by the evaluator. One mutation runs at a time; the
// mutex is the single mutual-exclusion boundary for this cart instance.
type Service struct {
	cfg      Config
	store    Store
	notifier Notifier
	lg       *zap.Logger

	mu   sync.Mutex
	cart Cart
}

// NewService creates a cart controller over the given initial cart state.
// A nil store disables persistence; a nil notifier discards notifications.
func NewService(cfg Config, initial Cart, store Store, notifier Notifier, lg *zap.Logger) *Service {
	if notifier == nil {
		notifier = NotifierFunc(func(Severity, string) {})
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		lg:       lg,
		cart:     initial.Clone(),
	}
}

// Add puts one unit of p into the cart: a new line with quantity 1, or an
// increment of the existing line. It fails with ErrOutOfStock when the cart
// already holds all available stock, and with StockExceededError when the
// increment would pass the stock; neither failure mutates the cart.
func (s *Service) Add(ctx context.Context, p product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Stock-s.cart.Quantity(p.ID) <= 0 {
		s.notifier.Notify(SeverityError, "out of stock")
		return ErrOutOfStock
	}

	if i := s.cart.index(p.ID); i >= 0 {
		next := s.cart.Items[i].Quantity + 1
		if next > p.Stock {
			err := &StockExceededError{ProductID: p.ID, Stock: p.Stock}
			s.notifier.Notify(SeverityError, err.Error())
			return err
		}
		s.cart.Items[i].Quantity = next
	} else {
		s.cart.Items = append(s.cart.Items, Item{Product: p, Quantity: 1})
	}

	s.persist(ctx)
	s.notifier.Notify(SeveritySuccess, "added to cart")
	return nil
}

// Remove deletes the item for productID. An absent ID is a silent no-op.
func (s *Service) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(ctx, productID)
}

func (s *Service) removeLocked(ctx context.Context, productID string) {
	i := s.cart.index(productID)
	if i < 0 {
		return
	}
	s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
	s.persist(ctx)
}

// UpdateQuantity replaces the line quantity for p. A quantity of zero or
// less removes the line; a quantity above the stock fails with
// StockExceededError and mutates nothing. An ID not in the cart is a silent
// no-op.
func (s *Service) UpdateQuantity(ctx context.Context, p product.Product, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeLocked(ctx, p.ID)
		return nil
	}
	if quantity > p.Stock {
		err := &StockExceededError{ProductID: p.ID, Stock: p.Stock}
		s.notifier.Notify(SeverityError, err.Error())
		return err
	}

	if i := s.cart.index(p.ID); i >= 0 {
		s.cart.Items[i].Quantity = quantity
		s.persist(ctx)
	}
	return nil
}

// ApplyCoupon selects c after checking eligibility against the discounted
// total with no coupon applied. An ineligible coupon leaves the previously
// selected coupon untouched and returns coupon.ErrNotEligible.
func (s *Service) ApplyCoupon(ctx context.Context, c coupon.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !coupon.Eligible(c, Subtotal(s.cart)) {
		s.notifier.Notify(SeverityError, fmt.Sprintf(
			"percentage coupons require a purchase of at least %s", coupon.MinPercentageTotal))
		return coupon.ErrNotEligible
	}

	cp := c
	s.cart.SelectedCoupon = &cp
	s.persist(ctx)
	s.notifier.Notify(SeveritySuccess, "coupon applied")
	return nil
}

// ClearCoupon drops the selected coupon. Safe to call when none is selected.
func (s *Service) ClearCoupon(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.SelectedCoupon == nil {
		return
	}
	s.cart.SelectedCoupon = nil
	s.persist(ctx)
}

// Clear empties the cart. The selected coupon survives unless
// Config.ClearCouponOnClear is set.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Items = nil
	if s.cfg.ClearCouponOnClear {
		s.cart.SelectedCoupon = nil
	}
	s.persist(ctx)
}

// RemainingStock returns how many more units of p this cart can accept. The
// value is informational; mutations re-check stock under the lock.
func (s *Service) RemainingStock(p product.Product) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return p.Stock - s.cart.Quantity(p.ID)
}

// Snapshot returns a copy of the current cart.
func (s *Service) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Totals prices the current cart including the selected coupon.
func (s *Service) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeTotals(s.cart)
}

// persist writes the current cart through to the store. Must be called with
// the lock held. Errors are surfaced in the log only.
func (s *Service) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveCart(ctx, s.cart.Clone()); err != nil {
		s.lg.Warn("persist cart", zap.Error(err))
	}
}
