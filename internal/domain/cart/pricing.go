package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/cartd/internal/domain/coupon"
)

// BulkQuantity is the single-item quantity that triggers the cart-wide
// bulk-purchase bonus.
const BulkQuantity = 10

var (
	one       = decimal.NewFromInt(1)
	bulkBonus = decimal.RequireFromString("0.05")
	rateCap   = decimal.RequireFromString("0.5")
)

// MaxApplicableDiscount resolves the discount rate for item within c: the
// highest qualifying tier rate, plus the bulk-purchase bonus when any item
// in the whole cart reaches BulkQuantity, capped at 0.5.
func MaxApplicableDiscount(item Item, c Cart) decimal.Decimal {
	rate := item.Product.TierRate(item.Quantity)
	if c.HasBulkPurchase() {
		rate = decimal.Min(rate.Add(bulkBonus), rateCap)
	}
	return rate
}

// ItemTotal returns the discounted line total for item, rounded half away
// from zero to an integral minor-unit amount.
func ItemTotal(item Item, c Cart) decimal.Decimal {
	qty := decimal.NewFromInt(int64(item.Quantity))
	return item.Product.Price.Mul(qty).Mul(one.Sub(MaxApplicableDiscount(item, c))).Round(0)
}

// Subtotal is the discounted cart total with no coupon applied. This is the
// value coupon eligibility is evaluated against.
func Subtotal(c Cart) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(ItemTotal(it, c))
	}
	return sum
}

// Totals holds the cart-wide totals. BeforeDiscount ignores every discount;
// AfterDiscount applies tier discounts, the bulk bonus, and the selected
// coupon. Both are integral and never negative.
type Totals struct {
	BeforeDiscount decimal.Decimal
	AfterDiscount  decimal.Decimal
}

// ComputeTotals prices the whole cart, applying the selected coupon last.
func ComputeTotals(c Cart) Totals {
	before := decimal.Zero
	for _, it := range c.Items {
		before = before.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	after := Subtotal(c)
	if c.SelectedCoupon != nil {
		after = coupon.Apply(*c.SelectedCoupon, after)
	}

	return Totals{
		BeforeDiscount: before.Round(0),
		AfterDiscount:  after,
	}
}
