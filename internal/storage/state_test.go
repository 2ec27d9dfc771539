package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/cartd/internal/domain/cart"
	"github.com/xenking/cartd/internal/domain/coupon"
	"github.com/xenking/cartd/internal/domain/product"
	"github.com/xenking/cartd/internal/storage/kv"
)

func testProduct() product.Product {
	return product.Product{
		ID:    "p1",
		Name:  "Espresso Beans 1kg",
		Price: decimal.NewFromInt(1899),
		Stock: 40,
		Discounts: []product.Discount{
			{Quantity: 3, Rate: decimal.RequireFromString("0.1")},
		},
	}
}

func TestCartRoundTrip(t *testing.T) {
	store := New(kv.NewMemory(), nil)
	ctx := context.Background()

	cp := coupon.Coupon{
		Code:          "WELCOME10",
		Name:          "Welcome",
		DiscountType:  coupon.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
	}
	in := cart.Cart{
		Items:          []cart.Item{{Product: testProduct(), Quantity: 3}},
		SelectedCoupon: &cp,
	}

	require.NoError(t, store.SaveCart(ctx, in))
	out := store.LoadCart(ctx)

	require.Len(t, out.Items, 1)
	assert.Equal(t, "p1", out.Items[0].Product.ID)
	assert.Equal(t, 3, out.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(1899).Equal(out.Items[0].Product.Price))
	require.Len(t, out.Items[0].Product.Discounts, 1)
	assert.True(t, decimal.RequireFromString("0.1").Equal(out.Items[0].Product.Discounts[0].Rate))

	require.NotNil(t, out.SelectedCoupon)
	assert.Equal(t, "WELCOME10", out.SelectedCoupon.Code)
	assert.Equal(t, coupon.DiscountPercentage, out.SelectedCoupon.DiscountType)
}

func TestLoadCart_AbsentReturnsEmpty(t *testing.T) {
	store := New(kv.NewMemory(), nil)

	out := store.LoadCart(context.Background())
	assert.Empty(t, out.Items)
	assert.Nil(t, out.SelectedCoupon)
}

func TestLoadCart_MalformedReturnsEmpty(t *testing.T) {
	mem := kv.NewMemory()
	require.NoError(t, mem.Save(context.Background(), KeyCart, []byte("{not json")))
	store := New(mem, nil)

	out := store.LoadCart(context.Background())
	assert.Empty(t, out.Items)
	assert.Nil(t, out.SelectedCoupon)
}

func TestLoadCart_DropsNonPositiveQuantities(t *testing.T) {
	mem := kv.NewMemory()
	store := New(mem, nil)
	ctx := context.Background()

	snapshot := []byte(`{"items":[
		{"product":{"id":"p1","name":"a","price":"100","stock":5},"quantity":0},
		{"product":{"id":"p2","name":"b","price":"100","stock":5},"quantity":2}
	]}`)
	require.NoError(t, mem.Save(ctx, KeyCart, snapshot))

	out := store.LoadCart(ctx)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "p2", out.Items[0].Product.ID)
}

func TestProductsRoundTrip(t *testing.T) {
	store := New(kv.NewMemory(), nil)
	ctx := context.Background()

	in := []product.Product{testProduct()}
	require.NoError(t, store.SaveProducts(ctx, in))

	out := store.LoadProducts(ctx, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].ID)
	assert.Equal(t, 40, out[0].Stock)
}

func TestLoadProducts_AbsentReturnsFallback(t *testing.T) {
	store := New(kv.NewMemory(), nil)

	fallback := []product.Product{testProduct()}
	out := store.LoadProducts(context.Background(), fallback)
	assert.Equal(t, fallback, out)
}

func TestLoadProducts_MalformedReturnsFallback(t *testing.T) {
	mem := kv.NewMemory()
	require.NoError(t, mem.Save(context.Background(), KeyProducts, []byte("42")))
	store := New(mem, nil)

	fallback := []product.Product{testProduct()}
	out := store.LoadProducts(context.Background(), fallback)
	assert.Equal(t, fallback, out)
}

func TestCouponsRoundTrip(t *testing.T) {
	store := New(kv.NewMemory(), nil)
	ctx := context.Background()

	in := []coupon.Coupon{
		{
			Code:          "SAVE5000",
			Name:          "5000 off",
			DiscountType:  coupon.DiscountAmount,
			DiscountValue: decimal.NewFromInt(5000),
		},
	}
	require.NoError(t, store.SaveCoupons(ctx, in))

	out := store.LoadCoupons(ctx, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "SAVE5000", out[0].Code)
	assert.Equal(t, coupon.DiscountAmount, out[0].DiscountType)
	assert.True(t, decimal.NewFromInt(5000).Equal(out[0].DiscountValue))
}

func TestLoadCoupons_AbsentReturnsFallback(t *testing.T) {
	store := New(kv.NewMemory(), nil)

	fallback := []coupon.Coupon{{Code: "X", DiscountType: coupon.DiscountAmount, DiscountValue: decimal.NewFromInt(1)}}
	out := store.LoadCoupons(context.Background(), fallback)
	assert.Equal(t, fallback, out)
}
