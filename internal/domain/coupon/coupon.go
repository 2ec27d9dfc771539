package coupon

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported coupon discount strategies.
type DiscountType string

const (
	// DiscountAmount subtracts a fixed minor-unit value from the total,
	// floored at zero.
	DiscountAmount DiscountType = "amount"
	// DiscountPercentage multiplies the total by (1 - value/100), gated by a
	// minimum purchase total.
	DiscountPercentage DiscountType = "percentage"
)

var (
	// ErrNotFound is returned when a coupon code does not exist.
	ErrNotFound = errors.New("coupon not found")
	// ErrNotEligible is returned when a percentage coupon is applied to a
	// cart whose discounted total is below the minimum purchase threshold.
	ErrNotEligible = errors.New("coupon not eligible")
)

// Coupon is a cart-wide discount identified by its code. For amount coupons
// DiscountValue is a non-negative minor-unit amount; for percentage coupons
// it is an integer in [0, 100].
type Coupon struct {
	Code          string
	Name          string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
}
