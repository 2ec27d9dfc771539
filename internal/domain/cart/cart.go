// Package cart holds the cart model, the pricing engine, and the cart
// controller.
//
// Pricing is coupled to global cart composition: a single item reaching the
// bulk quantity changes every item's discount rate. All pricing functions
// therefore take the whole cart, and the controller reprices after every
// mutation instead of per touched item.
package cart

import (
	"github.com/xenking/cartd/internal/domain/coupon"
	"github.com/xenking/cartd/internal/domain/product"
)

// Item is one cart line: a full product snapshot plus a positive quantity.
// An item whose quantity would reach zero is removed, never kept at zero.
type Item struct {
	Product  product.Product
	Quantity int
}

// Cart holds items in insertion order, unique by product ID, plus at most
// one selected coupon.
type Cart struct {
	Items          []Item
	SelectedCoupon *coupon.Coupon
}

// Quantity returns the cart quantity for the given product ID, zero when
// the product is not in the cart.
func (c Cart) Quantity(productID string) int {
	if i := c.index(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

func (c Cart) index(productID string) int {
	for i, it := range c.Items {
		if it.Product.ID == productID {
			return i
		}
	}
	return -1
}

// HasBulkPurchase reports whether any single item reaches BulkQuantity.
func (c Cart) HasBulkPurchase() bool {
	for _, it := range c.Items {
		if it.Quantity >= BulkQuantity {
			return true
		}
	}
	return false
}

// Clone returns a copy whose item slice, product snapshots, and coupon are
// independent of the original, so callers can hold a snapshot while the cart
// keeps mutating.
func (c Cart) Clone() Cart {
	out := Cart{}
	if len(c.Items) > 0 {
		out.Items = make([]Item, len(c.Items))
		for i, it := range c.Items {
			out.Items[i] = Item{Product: it.Product.Clone(), Quantity: it.Quantity}
		}
	}
	if c.SelectedCoupon != nil {
		cp := *c.SelectedCoupon
		out.SelectedCoupon = &cp
	}
	return out
}
