package coupon

import "github.com/shopspring/decimal"

// MinPercentageTotal is the discounted cart total, before the coupon itself
// is applied, required for a percentage coupon to be applicable.
var MinPercentageTotal = decimal.NewFromInt(10000)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// Eligible reports whether c may be applied to a cart whose discounted total
// (with no coupon applied) is total. Amount coupons have no minimum;
// percentage coupons require total >= MinPercentageTotal.
func Eligible(c Coupon, total decimal.Decimal) bool {
	if c.DiscountType == DiscountPercentage {
		return total.GreaterThanOrEqual(MinPercentageTotal)
	}
	return true
}

// Apply returns the total after the coupon discount, floored at zero for
// both types so an out-of-range value can never price a cart negative.
// Percentage coupons round half away from zero back to an integral
// minor-unit amount. Unknown discount types leave the total as is.
func Apply(c Coupon, total decimal.Decimal) decimal.Decimal {
	switch c.DiscountType {
	case DiscountAmount:
		next := total.Sub(c.DiscountValue)
		if next.IsNegative() {
			return decimal.Zero
		}
		return next
	case DiscountPercentage:
		next := total.Mul(one.Sub(c.DiscountValue.Div(hundred))).Round(0)
		if next.IsNegative() {
			return decimal.Zero
		}
		return next
	default:
		return total
	}
}
