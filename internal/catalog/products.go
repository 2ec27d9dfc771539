// Package catalog manages the product and coupon collections the cart
// consumes. Collections live in memory and are written through to the state
// store on every change; write-through failures are logged, never fatal.
package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xenking/cartd/internal/domain/product"
)

// ProductStore persists product catalog snapshots.
type ProductStore interface {
	SaveProducts(ctx context.Context, products []product.Product) error
}

// Products manages the product catalog.
type Products struct {
	store ProductStore
	lg    *zap.Logger

	mu    sync.RWMutex
	items []product.Product
}

// NewProducts creates a product catalog seeded with initial. A nil store
// disables persistence.
func NewProducts(initial []product.Product, store ProductStore, lg *zap.Logger) *Products {
	if lg == nil {
		lg = zap.NewNop()
	}
	items := make([]product.Product, len(initial))
	for i, p := range initial {
		items[i] = p.Clone()
	}
	return &Products{
		store: store,
		lg:    lg,
		items: items,
	}
}

// List returns the catalog in insertion order. Every returned product is a
// full snapshot; later catalog edits do not reach through.
func (p *Products) List() []product.Product {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]product.Product, len(p.items))
	for i, it := range p.items {
		out[i] = it.Clone()
	}
	return out
}

// Get returns a snapshot of the product with the given ID.
func (p *Products) Get(id string) (product.Product, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if i := p.index(id); i >= 0 {
		return p.items[i].Clone(), nil
	}
	return product.Product{}, product.ErrNotFound
}

// Add inserts prod, assigning a server-generated ID when none is set, and
// returns the stored product.
func (p *Products) Add(ctx context.Context, prod product.Product) product.Product {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prod.ID == "" {
		prod.ID = "p-" + uuid.New().String()
	}
	p.items = append(p.items, prod.Clone())
	p.persist(ctx)
	return prod.Clone()
}

// Update replaces the product with the same ID.
func (p *Products) Update(ctx context.Context, prod product.Product) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.index(prod.ID)
	if i < 0 {
		return product.ErrNotFound
	}
	p.items[i] = prod.Clone()
	p.persist(ctx)
	return nil
}

// Remove deletes the product with the given ID. Absent IDs are a no-op.
func (p *Products) Remove(ctx context.Context, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.index(id)
	if i < 0 {
		return
	}
	p.items = append(p.items[:i], p.items[i+1:]...)
	p.persist(ctx)
}

// UpdateStock sets the stock count for the given product.
func (p *Products) UpdateStock(ctx context.Context, id string, stock int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.index(id)
	if i < 0 {
		return product.ErrNotFound
	}
	p.items[i].Stock = stock
	p.persist(ctx)
	return nil
}

// AddDiscount appends a discount tier to the given product.
func (p *Products) AddDiscount(ctx context.Context, id string, d product.Discount) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.index(id)
	if i < 0 {
		return product.ErrNotFound
	}
	p.items[i].Discounts = append(p.items[i].Discounts, d)
	p.persist(ctx)
	return nil
}

// RemoveDiscount deletes all discount tiers with the given quantity
// threshold from the product.
func (p *Products) RemoveDiscount(ctx context.Context, id string, quantity int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.index(id)
	if i < 0 {
		return product.ErrNotFound
	}

	// Filter into a fresh slice: the old backing array may still be visible
	// through snapshots handed out before this call.
	var kept []product.Discount
	for _, d := range p.items[i].Discounts {
		if d.Quantity != quantity {
			kept = append(kept, d)
		}
	}
	p.items[i].Discounts = kept
	p.persist(ctx)
	return nil
}

// index must be called with the lock held.
func (p *Products) index(id string) int {
	for i, it := range p.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with the lock held.
func (p *Products) persist(ctx context.Context) {
	if p.store == nil {
		return
	}
	snapshot := append([]product.Product(nil), p.items...)
	if err := p.store.SaveProducts(ctx, snapshot); err != nil {
		p.lg.Warn("persist products", zap.Error(err))
	}
}
