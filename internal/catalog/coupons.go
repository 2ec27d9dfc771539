package catalog

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"go.uber.org/zap"

	"github.com/xenking/cartd/internal/domain/coupon"
)

// Sized for ingested code dumps, not hand-entered catalogs.
const (
	filterCapacity = 1 << 20
	filterFPR      = 0.001
)

// CouponStore persists coupon catalog snapshots.
type CouponStore interface {
	SaveCoupons(ctx context.Context, coupons []coupon.Coupon) error
}

// Coupons manages the coupon catalog. A bloom filter fronts Find so lookups
// for codes that were never added skip the catalog scan. The filter only
// grows: a removed code may still test positive and then miss in the scan.
type Coupons struct {
	store CouponStore
	lg    *zap.Logger

	mu     sync.RWMutex
	items  []coupon.Coupon
	filter *bloom.BloomFilter
}

// NewCoupons creates a coupon catalog seeded with initial. A nil store
// disables persistence.
func NewCoupons(initial []coupon.Coupon, store CouponStore, lg *zap.Logger) *Coupons {
	if lg == nil {
		lg = zap.NewNop()
	}
	c := &Coupons{
		store:  store,
		lg:     lg,
		items:  append([]coupon.Coupon(nil), initial...),
		filter: bloom.NewWithEstimates(filterCapacity, filterFPR),
	}
	for _, cp := range c.items {
		c.filter.AddString(cp.Code)
	}
	return c
}

// List returns the catalog in insertion order.
func (c *Coupons) List() []coupon.Coupon {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]coupon.Coupon(nil), c.items...)
}

// Find returns the coupon with the given code.
func (c *Coupons) Find(code string) (coupon.Coupon, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.filter.TestString(code) {
		return coupon.Coupon{}, coupon.ErrNotFound
	}
	if i := c.index(code); i >= 0 {
		return c.items[i], nil
	}
	return coupon.Coupon{}, coupon.ErrNotFound
}

// Add upserts cp by code.
func (c *Coupons) Add(ctx context.Context, cp coupon.Coupon) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(cp.Code); i >= 0 {
		c.items[i] = cp
	} else {
		c.items = append(c.items, cp)
		c.filter.AddString(cp.Code)
	}
	c.persist(ctx)
}

// Remove deletes the coupon with the given code. Absent codes are a no-op.
func (c *Coupons) Remove(ctx context.Context, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(code)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.persist(ctx)
}

// index must be called with the lock held.
func (c *Coupons) index(code string) int {
	for i, cp := range c.items {
		if cp.Code == code {
			return i
		}
	}
	return -1
}

// persist must be called with the lock held.
func (c *Coupons) persist(ctx context.Context) {
	if c.store == nil {
		return
	}
	snapshot := append([]coupon.Coupon(nil), c.items...)
	if err := c.store.SaveCoupons(ctx, snapshot); err != nil {
		c.lg.Warn("persist coupons", zap.Error(err))
	}
}
