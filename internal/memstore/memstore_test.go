package memstore

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/order"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
)

func seed(t *testing.T, r *Products, name string, cat product.Category, price string) *product.Product {
	t.Helper()
	p := &product.Product{Name: name, Category: cat, Price: decimal.RequireFromString(price), Image: "x.png"}
	require.NoError(t, r.Create(context.Background(), p))
	return p
}

func TestProducts_ListFiltersSortsPages(t *testing.T) {
	ctx := context.Background()
	r := New().Products()
	seed(t, r, "Black Tee", product.CategoryMen, "20")
	seed(t, r, "Linen Dress", product.CategoryWomen, "55.5")
	seed(t, r, "Tiny Tee", product.CategoryKids, "9.99")
	seed(t, r, "Wool Coat", product.CategoryMen, "120")

	items, total, err := r.List(ctx, product.Query{Search: "tee"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "Tiny Tee", items[0].Name, "newest first by default")

	floor := decimal.RequireFromString("10")
	items, total, err = r.List(ctx, product.Query{Category: product.CategoryMen, MinPrice: &floor, Sort: product.SortPriceDesc})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"Wool Coat", "Black Tee"}, []string{items[0].Name, items[1].Name})

	items, total, err = r.List(ctx, product.Query{Sort: product.SortNameAsc, Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Wool Coat", items[0].Name)
}

func TestProducts_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	r := New().Products()
	p := seed(t, r, "Tee", product.CategoryMen, "10")

	price := decimal.RequireFromString("12.50")
	got, err := r.Update(ctx, p.ID, product.Patch{Price: &price})
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(price))
	assert.Equal(t, "Tee", got.Name)

	_, err = r.Update(ctx, "missing", product.Patch{Price: &price})
	assert.ErrorIs(t, err, product.ErrNotFound)

	ok, err := r.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCarts_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := New().Carts()
	size := "M"
	c := cart.New("acct")
	c.Add(cart.Key{ProductID: "p1", Size: &size}, 1)
	require.NoError(t, r.Save(ctx, c))

	got, err := r.Get(ctx, "acct")
	require.NoError(t, err)
	*got.Items[0].Size = "XL"
	got.Items[0].Quantity = 99

	again, err := r.Get(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, "M", *again.Items[0].Size)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestOrders_PlaceFromCartIsAtomic(t *testing.T) {
	ctx := context.Background()
	db := New()
	orders := db.Orders()

	o := order.New("o1", "acct", []order.Item{{ProductID: "p1", Quantity: 1, Price: decimal.NewFromInt(5)}}, db.now())
	err := orders.PlaceFromCart(ctx, o)
	assert.ErrorIs(t, err, order.ErrCartMissing)
	_, err = orders.GetByID(ctx, "o1")
	assert.ErrorIs(t, err, order.ErrNotFound, "no order without a cart")

	c := cart.New("acct")
	c.Add(cart.Key{ProductID: "p1"}, 1)
	require.NoError(t, db.Carts().Save(ctx, c))
	require.NoError(t, orders.PlaceFromCart(ctx, o))

	got, err := db.Carts().Get(ctx, "acct")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
	stored, err := orders.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.True(t, stored.TotalPrice.Equal(decimal.NewFromInt(5)))
}

func TestOrders_DeleteOwned(t *testing.T) {
	ctx := context.Background()
	db := New()
	require.NoError(t, db.Carts().Save(ctx, cart.New("owner")))
	o := order.New("o1", "owner", nil, db.now())
	require.NoError(t, db.Orders().PlaceFromCart(ctx, o))

	ok, err := db.Orders().DeleteOwned(ctx, "o1", "intruder")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.Orders().DeleteOwned(ctx, "o1", "owner")
	require.NoError(t, err)
	assert.True(t, ok)
}
