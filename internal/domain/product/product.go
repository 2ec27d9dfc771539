package product

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Price is an
// integral amount in the minor currency unit. Stock is the available count
// independent of any cart.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Stock     int
	Discounts []Discount
}

// Discount is a quantity-based markdown tier: Rate applies once a cart line
// holds at least Quantity units of the product.
type Discount struct {
	Quantity int
	Rate     decimal.Decimal
}

// Clone returns a copy whose Discounts slice is independent of the
// original, so a held snapshot is immune to later catalog edits.
func (p Product) Clone() Product {
	out := p
	if len(p.Discounts) > 0 {
		out.Discounts = make([]Discount, len(p.Discounts))
		copy(out.Discounts, p.Discounts)
	}
	return out
}

// TierRate returns the highest discount rate among tiers whose quantity
// threshold is met by the given quantity, or zero when none qualify.
// Thresholds are not required to be unique; ties resolve to the highest rate.
func (p Product) TierRate(quantity int) decimal.Decimal {
	rate := decimal.Zero
	for _, d := range p.Discounts {
		if quantity >= d.Quantity && d.Rate.GreaterThan(rate) {
			rate = d.Rate
		}
	}
	return rate
}
