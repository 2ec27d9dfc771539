package coupon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amountCoupon(value int64) Coupon {
	return Coupon{
		Code:          "AMOUNT",
		DiscountType:  DiscountAmount,
		DiscountValue: decimal.NewFromInt(value),
	}
}

func percentageCoupon(value int64) Coupon {
	return Coupon{
		Code:          "PERCENT",
		DiscountType:  DiscountPercentage,
		DiscountValue: decimal.NewFromInt(value),
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name   string
		coupon Coupon
		total  int64
		want   bool
	}{
		{"amount with empty cart", amountCoupon(500), 0, true},
		{"amount with small total", amountCoupon(500), 100, true},
		{"percentage below threshold", percentageCoupon(20), 9999, false},
		{"percentage at threshold", percentageCoupon(20), 10000, true},
		{"percentage above threshold", percentageCoupon(20), 25000, true},
		{"percentage with empty cart", percentageCoupon(20), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Eligible(tt.coupon, decimal.NewFromInt(tt.total))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_Amount(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		total int64
		want  int64
	}{
		{"subtracts value", 5000, 20000, 15000},
		{"exact total", 5000, 5000, 0},
		{"floors at zero", 5000, 3000, 0},
		{"zero value", 0, 1234, 1234},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(amountCoupon(tt.value), decimal.NewFromInt(tt.total))
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got),
				"want %d, got %s", tt.want, got)
		})
	}
}

func TestApply_Percentage(t *testing.T) {
	tests := []struct {
		name  string
		value int64
		total int64
		want  int64
	}{
		{"20 percent off", 20, 10000, 8000},
		{"rounds half away from zero", 25, 10002, 7502}, // 7501.5 -> 7502
		{"100 percent off", 100, 45000, 0},
		{"zero percent", 0, 45000, 45000},
		{"over 100 percent floors at zero", 150, 27000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(percentageCoupon(tt.value), decimal.NewFromInt(tt.total))
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got),
				"want %d, got %s", tt.want, got)
		})
	}
}

func TestApply_UnknownTypeLeavesTotal(t *testing.T) {
	c := Coupon{Code: "X", DiscountType: "mystery", DiscountValue: decimal.NewFromInt(50)}
	total := decimal.NewFromInt(7777)

	assert.True(t, total.Equal(Apply(c, total)))
}

func TestApply_NeverNegative(t *testing.T) {
	for _, value := range []int64{1, 100, 10_000, 1_000_000} {
		got := Apply(amountCoupon(value), decimal.NewFromInt(500))
		assert.False(t, got.IsNegative(), "amount %d produced negative total %s", value, got)
	}
	for _, value := range []int64{100, 101, 150, 1000} {
		got := Apply(percentageCoupon(value), decimal.NewFromInt(27000))
		assert.False(t, got.IsNegative(), "percentage %d produced negative total %s", value, got)
	}
}
