// Package storage persists cart and catalog snapshots in a key-value store.
//
// Stored data is advisory: a missing or malformed snapshot degrades to the
// caller-supplied default instead of failing, so a corrupt store never takes
// the service down.
package storage

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/cartd/internal/domain/cart"
	"github.com/xenking/cartd/internal/domain/coupon"
	"github.com/xenking/cartd/internal/domain/product"
	"github.com/xenking/cartd/internal/storage/kv"
)

// State keys within the key-value store.
const (
	KeyCart     = "cart"
	KeyProducts = "products"
	KeyCoupons  = "coupons"
)

// Store reads and writes state snapshots.
type Store struct {
	kv kv.Store
	lg *zap.Logger
}

// New creates a Store over the given key-value backend.
func New(store kv.Store, lg *zap.Logger) *Store {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Store{kv: store, lg: lg}
}

// Snapshot wire format. Decimals marshal as quoted decimal strings, which
// keeps minor-unit amounts and rates lossless.

type discountState struct {
	Quantity int             `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
}

type productState struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Discounts []discountState `json:"discounts,omitempty"`
}

type couponState struct {
	Code          string          `json:"code"`
	Name          string          `json:"name,omitempty"`
	DiscountType  string          `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
}

type cartItemState struct {
	Product  productState `json:"product"`
	Quantity int          `json:"quantity"`
}

type cartState struct {
	Items  []cartItemState `json:"items"`
	Coupon *couponState    `json:"coupon,omitempty"`
}

// LoadCart returns the persisted cart, or an empty cart when the snapshot is
// absent or malformed.
func (s *Store) LoadCart(ctx context.Context) cart.Cart {
	var state cartState
	if !s.load(ctx, KeyCart, &state) {
		return cart.Cart{}
	}

	c := cart.Cart{}
	for _, it := range state.Items {
		if it.Quantity <= 0 {
			continue
		}
		c.Items = append(c.Items, cart.Item{
			Product:  toProduct(it.Product),
			Quantity: it.Quantity,
		})
	}
	if state.Coupon != nil {
		cp := toCoupon(*state.Coupon)
		c.SelectedCoupon = &cp
	}
	return c
}

// SaveCart persists the cart snapshot.
func (s *Store) SaveCart(ctx context.Context, c cart.Cart) error {
	state := cartState{Items: make([]cartItemState, len(c.Items))}
	for i, it := range c.Items {
		state.Items[i] = cartItemState{
			Product:  fromProduct(it.Product),
			Quantity: it.Quantity,
		}
	}
	if c.SelectedCoupon != nil {
		cp := fromCoupon(*c.SelectedCoupon)
		state.Coupon = &cp
	}
	return s.save(ctx, KeyCart, state)
}

// LoadProducts returns the persisted product catalog, or fallback when the
// snapshot is absent or malformed.
func (s *Store) LoadProducts(ctx context.Context, fallback []product.Product) []product.Product {
	var state []productState
	if !s.load(ctx, KeyProducts, &state) {
		return fallback
	}

	out := make([]product.Product, len(state))
	for i, p := range state {
		out[i] = toProduct(p)
	}
	return out
}

// SaveProducts persists the product catalog snapshot.
func (s *Store) SaveProducts(ctx context.Context, products []product.Product) error {
	state := make([]productState, len(products))
	for i, p := range products {
		state[i] = fromProduct(p)
	}
	return s.save(ctx, KeyProducts, state)
}

// LoadCoupons returns the persisted coupon catalog, or fallback when the
// snapshot is absent or malformed.
func (s *Store) LoadCoupons(ctx context.Context, fallback []coupon.Coupon) []coupon.Coupon {
	var state []couponState
	if !s.load(ctx, KeyCoupons, &state) {
		return fallback
	}

	out := make([]coupon.Coupon, len(state))
	for i, c := range state {
		out[i] = toCoupon(c)
	}
	return out
}

// SaveCoupons persists the coupon catalog snapshot.
func (s *Store) SaveCoupons(ctx context.Context, coupons []coupon.Coupon) error {
	state := make([]couponState, len(coupons))
	for i, c := range coupons {
		state[i] = fromCoupon(c)
	}
	return s.save(ctx, KeyCoupons, state)
}

// load fetches and unmarshals key into v. It reports false when the key is
// absent or the stored bytes do not parse; both degrade to the default.
func (s *Store) load(ctx context.Context, key string, v any) bool {
	data, err := s.kv.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.lg.Warn("load state", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.lg.Warn("malformed state, using default", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	if err := s.kv.Save(ctx, key, data); err != nil {
		return errors.Wrapf(err, "save %s", key)
	}
	return nil
}

func toProduct(p productState) product.Product {
	out := product.Product{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
	}
	for _, d := range p.Discounts {
		out.Discounts = append(out.Discounts, product.Discount{
			Quantity: d.Quantity,
			Rate:     d.Rate,
		})
	}
	return out
}

func fromProduct(p product.Product) productState {
	out := productState{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price,
		Stock: p.Stock,
	}
	for _, d := range p.Discounts {
		out.Discounts = append(out.Discounts, discountState{
			Quantity: d.Quantity,
			Rate:     d.Rate,
		})
	}
	return out
}

func toCoupon(c couponState) coupon.Coupon {
	return coupon.Coupon{
		Code:          c.Code,
		Name:          c.Name,
		DiscountType:  coupon.DiscountType(c.DiscountType),
		DiscountValue: c.DiscountValue,
	}
}

func fromCoupon(c coupon.Coupon) couponState {
	return couponState{
		Code:          c.Code,
		Name:          c.Name,
		DiscountType:  string(c.DiscountType),
		DiscountValue: c.DiscountValue,
	}
}
