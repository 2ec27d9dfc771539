package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/cartd/internal/domain/cart"
	"github.com/xenking/cartd/internal/domain/coupon"
	"github.com/xenking/cartd/internal/domain/product"
)

type recordingProductStore struct {
	saves [][]product.Product
}

func (r *recordingProductStore) SaveProducts(_ context.Context, products []product.Product) error {
	r.saves = append(r.saves, products)
	return nil
}

type recordingCouponStore struct {
	saves [][]coupon.Coupon
}

func (r *recordingCouponStore) SaveCoupons(_ context.Context, coupons []coupon.Coupon) error {
	r.saves = append(r.saves, coupons)
	return nil
}

func testProduct(id string, price int64, stock int) product.Product {
	return product.Product{
		ID:    id,
		Name:  id,
		Price: decimal.NewFromInt(price),
		Stock: stock,
	}
}

// --- Products ---

func TestProducts_AddAssignsID(t *testing.T) {
	store := &recordingProductStore{}
	catalog := NewProducts(nil, store, nil)

	stored := catalog.Add(context.Background(), product.Product{Name: "Mug", Price: decimal.NewFromInt(1250), Stock: 5})

	assert.NotEmpty(t, stored.ID)
	assert.Regexp(t, `^p-`, stored.ID)
	assert.Len(t, store.saves, 1)

	got, err := catalog.Get(stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", got.Name)
}

func TestProducts_AddKeepsGivenID(t *testing.T) {
	catalog := NewProducts(nil, nil, nil)

	stored := catalog.Add(context.Background(), testProduct("p-fixed", 100, 1))
	assert.Equal(t, "p-fixed", stored.ID)
}

func TestProducts_GetUnknown(t *testing.T) {
	catalog := NewProducts(nil, nil, nil)

	_, err := catalog.Get("ghost")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestProducts_Update(t *testing.T) {
	catalog := NewProducts([]product.Product{testProduct("p1", 100, 1)}, nil, nil)

	updated := testProduct("p1", 250, 7)
	require.NoError(t, catalog.Update(context.Background(), updated))

	got, err := catalog.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)
	assert.True(t, decimal.NewFromInt(250).Equal(got.Price))

	assert.ErrorIs(t, catalog.Update(context.Background(), testProduct("ghost", 1, 1)), product.ErrNotFound)
}

func TestProducts_Remove(t *testing.T) {
	store := &recordingProductStore{}
	catalog := NewProducts([]product.Product{testProduct("p1", 100, 1)}, store, nil)

	catalog.Remove(context.Background(), "p1")
	assert.Empty(t, catalog.List())
	assert.Len(t, store.saves, 1)

	// Absent ID is a no-op and does not persist.
	catalog.Remove(context.Background(), "p1")
	assert.Len(t, store.saves, 1)
}

func TestProducts_UpdateStock(t *testing.T) {
	catalog := NewProducts([]product.Product{testProduct("p1", 100, 1)}, nil, nil)

	require.NoError(t, catalog.UpdateStock(context.Background(), "p1", 42))
	got, err := catalog.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, 42, got.Stock)

	assert.ErrorIs(t, catalog.UpdateStock(context.Background(), "ghost", 1), product.ErrNotFound)
}

func TestProducts_Discounts(t *testing.T) {
	catalog := NewProducts([]product.Product{testProduct("p1", 100, 1)}, nil, nil)
	ctx := context.Background()

	require.NoError(t, catalog.AddDiscount(ctx, "p1", product.Discount{Quantity: 3, Rate: decimal.RequireFromString("0.1")}))
	require.NoError(t, catalog.AddDiscount(ctx, "p1", product.Discount{Quantity: 6, Rate: decimal.RequireFromString("0.2")}))

	got, err := catalog.Get("p1")
	require.NoError(t, err)
	assert.Len(t, got.Discounts, 2)

	require.NoError(t, catalog.RemoveDiscount(ctx, "p1", 3))
	got, err = catalog.Get("p1")
	require.NoError(t, err)
	require.Len(t, got.Discounts, 1)
	assert.Equal(t, 6, got.Discounts[0].Quantity)

	assert.ErrorIs(t, catalog.AddDiscount(ctx, "ghost", product.Discount{}), product.ErrNotFound)
	assert.ErrorIs(t, catalog.RemoveDiscount(ctx, "ghost", 3), product.ErrNotFound)
}

func TestProducts_SnapshotsSurviveDiscountEdits(t *testing.T) {
	p := testProduct("p1", 100, 10)
	p.Discounts = []product.Discount{
		{Quantity: 3, Rate: decimal.RequireFromString("0.1")},
		{Quantity: 5, Rate: decimal.RequireFromString("0.2")},
	}
	catalog := NewProducts([]product.Product{p}, nil, nil)
	ctx := context.Background()

	held, err := catalog.Get("p1")
	require.NoError(t, err)

	require.NoError(t, catalog.RemoveDiscount(ctx, "p1", 3))
	require.NoError(t, catalog.AddDiscount(ctx, "p1", product.Discount{Quantity: 2, Rate: decimal.RequireFromString("0.3")}))

	// The snapshot handed out before the edits keeps its own tiers.
	require.Len(t, held.Discounts, 2)
	assert.Equal(t, 3, held.Discounts[0].Quantity)
	assert.True(t, decimal.RequireFromString("0.1").Equal(held.Discounts[0].Rate))

	got, err := catalog.Get("p1")
	require.NoError(t, err)
	require.Len(t, got.Discounts, 2)
	assert.Equal(t, 5, got.Discounts[0].Quantity)
	assert.Equal(t, 2, got.Discounts[1].Quantity)
}

func TestProducts_CartUnaffectedByDiscountRemoval(t *testing.T) {
	p := testProduct("p1", 1000, 10)
	p.Discounts = []product.Discount{
		{Quantity: 3, Rate: decimal.RequireFromString("0.1")},
		{Quantity: 5, Rate: decimal.RequireFromString("0.2")},
	}
	catalog := NewProducts([]product.Product{p}, nil, nil)
	ctx := context.Background()

	svc := cart.NewService(cart.Config{}, cart.Cart{}, nil, nil, nil)
	got, err := catalog.Get("p1")
	require.NoError(t, err)
	for range 3 {
		require.NoError(t, svc.Add(ctx, got))
	}
	require.True(t, decimal.NewFromInt(2700).Equal(svc.Totals().AfterDiscount))

	// An admin removing a tier must not reprice an already-held cart.
	require.NoError(t, catalog.RemoveDiscount(ctx, "p1", 3))

	snapshot := svc.Snapshot()
	require.Len(t, snapshot.Items, 1)
	require.Len(t, snapshot.Items[0].Product.Discounts, 2)
	assert.Equal(t, 3, snapshot.Items[0].Product.Discounts[0].Quantity)
	assert.True(t, decimal.NewFromInt(2700).Equal(svc.Totals().AfterDiscount))
}

func TestProducts_ListIsACopy(t *testing.T) {
	catalog := NewProducts([]product.Product{testProduct("p1", 100, 1)}, nil, nil)

	list := catalog.List()
	list[0].Stock = 99

	got, err := catalog.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
}

// --- Coupons ---

func testCoupon(code string) coupon.Coupon {
	return coupon.Coupon{
		Code:          code,
		Name:          code,
		DiscountType:  coupon.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
	}
}

func TestCoupons_Find(t *testing.T) {
	catalog := NewCoupons([]coupon.Coupon{testCoupon("WELCOME10")}, nil, nil)

	got, err := catalog.Find("WELCOME10")
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", got.Code)

	_, err = catalog.Find("NOPE")
	assert.ErrorIs(t, err, coupon.ErrNotFound)
}

func TestCoupons_AddUpserts(t *testing.T) {
	store := &recordingCouponStore{}
	catalog := NewCoupons(nil, store, nil)
	ctx := context.Background()

	catalog.Add(ctx, testCoupon("SAVE"))
	require.Len(t, catalog.List(), 1)

	updated := testCoupon("SAVE")
	updated.DiscountValue = decimal.NewFromInt(25)
	catalog.Add(ctx, updated)

	list := catalog.List()
	require.Len(t, list, 1, "same code must upsert, not duplicate")
	assert.True(t, decimal.NewFromInt(25).Equal(list[0].DiscountValue))
	assert.Len(t, store.saves, 2)
}

func TestCoupons_Remove(t *testing.T) {
	catalog := NewCoupons([]coupon.Coupon{testCoupon("SAVE")}, nil, nil)
	ctx := context.Background()

	catalog.Remove(ctx, "SAVE")
	assert.Empty(t, catalog.List())

	// The bloom filter may still test positive for the removed code; the
	// catalog scan must report it gone.
	_, err := catalog.Find("SAVE")
	assert.ErrorIs(t, err, coupon.ErrNotFound)
}

func TestCoupons_FindAfterAdd(t *testing.T) {
	catalog := NewCoupons(nil, nil, nil)

	_, err := catalog.Find("LATER")
	require.ErrorIs(t, err, coupon.ErrNotFound)

	catalog.Add(context.Background(), testCoupon("LATER"))

	got, err := catalog.Find("LATER")
	require.NoError(t, err)
	assert.Equal(t, "LATER", got.Code)
}
