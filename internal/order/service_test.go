package order_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/apperr"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/events"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/lock"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/memstore"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/order"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/user"
)

type fixture struct {
	db     *memstore.DB
	carts  *cart.Service
	orders *order.Service
	events *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memstore.New()
	for _, p := range []*product.Product{
		{ID: "p1", Name: "Tee", Category: product.CategoryMen, Price: decimal.RequireFromString("10.00"), Image: "a.png"},
		{ID: "p2", Name: "Dress", Category: product.CategoryWomen, Price: decimal.RequireFromString("25.50"), Image: "b.png"},
	} {
		require.NoError(t, db.Products().Create(context.Background(), p))
	}
	locks := lock.NewLocal()
	rec := &events.Recorder{}
	log := logger.NewNop()
	return &fixture{
		db:     db,
		carts:  cart.NewService(db.Carts(), db.Products(), locks, log),
		orders: order.NewService(db.Orders(), db.Carts(), db.Products(), db.Users(), locks, rec, log),
		events: rec,
	}
}

func (f *fixture) fill(t *testing.T, accountID string) {
	t.Helper()
	size := "M"
	_, err := f.carts.Add(context.Background(), accountID, cart.Key{ProductID: "p1", Size: &size}, 2)
	require.NoError(t, err)
	_, err = f.carts.Add(context.Background(), accountID, cart.Key{ProductID: "p2"}, 1)
	require.NoError(t, err)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.orders.PlaceOrder(ctx, "acct")
	assert.True(t, apperr.Is(err, apperr.KindInvalidState), "no cart at all")

	f.fill(t, "acct")
	_, err = f.carts.Clear(ctx, "acct")
	require.NoError(t, err)
	_, err = f.orders.PlaceOrder(ctx, "acct")
	assert.True(t, apperr.Is(err, apperr.KindInvalidState), "cart with zero items")
	assert.Equal(t, "cart is empty", apperr.Message(err))

	list, err := f.orders.ListForAccount(ctx, "acct", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.events.Events())
}

func TestPlaceOrder_SnapshotsAndClearsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "acct")

	v, err := f.orders.PlaceOrder(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, v.Status)
	assert.Equal(t, "acct", v.AccountID)
	require.Len(t, v.Products, 2)
	assert.True(t, v.TotalPrice.Equal(decimal.RequireFromString("45.50")))
	assert.Equal(t, "M", *v.Products[0].Size)

	cv, err := f.carts.View(ctx, "acct")
	require.NoError(t, err)
	assert.Empty(t, cv.Items)

	evs := f.events.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.TypeOrderPlaced, evs[0].Type)
	assert.Equal(t, v.ID, evs[0].OrderID)
}

func TestPlaceOrder_PriceIsFrozen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "acct")

	placed, err := f.orders.PlaceOrder(ctx, "acct")
	require.NoError(t, err)

	newPrice := decimal.RequireFromString("99.00")
	_, err = f.db.Products().Update(ctx, "p1", product.Patch{Price: &newPrice})
	require.NoError(t, err)

	list, err := f.orders.ListForAccount(ctx, "acct", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	got := list[0]
	assert.Equal(t, placed.ID, got.ID)
	assert.True(t, got.TotalPrice.Equal(decimal.RequireFromString("45.50")))
	assert.True(t, got.Products[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, got.Products[0].Product.Price.Equal(newPrice), "joined product shows the live price")
}

func TestPlaceOrder_MissingProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "acct")
	_, err := f.db.Products().Delete(ctx, "p2")
	require.NoError(t, err)

	_, err = f.orders.PlaceOrder(ctx, "acct")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	cv, err := f.carts.View(ctx, "acct")
	require.NoError(t, err)
	assert.Len(t, cv.Items, 2, "cart untouched")
}

func TestPlaceOrder_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.events.Err = errors.New("broker down")
	f.fill(t, "acct")

	_, err := f.orders.PlaceOrder(ctx, "acct")
	require.NoError(t, err)
}

// Status writes are deliberately unguarded: any enumerated value may follow any other.
func TestSetStatus_Unguarded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "acct")
	placed, err := f.orders.PlaceOrder(ctx, "acct")
	require.NoError(t, err)

	v, err := f.orders.SetStatus(ctx, placed.ID, "Delivered")
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, v.Status)
	assert.True(t, v.Status.Terminal())

	v, err = f.orders.SetStatus(ctx, placed.ID, "Pending")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, v.Status)
}

func TestSetStatus_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.orders.SetStatus(ctx, "missing", "Shipped")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.orders.SetStatus(ctx, "missing", "Lost")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDelete_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.fill(t, "owner")
	placed, err := f.orders.PlaceOrder(ctx, "owner")
	require.NoError(t, err)

	err = f.orders.Delete(ctx, "intruder", placed.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.orders.SetStatus(ctx, placed.ID, "Shipped")
	require.NoError(t, err)
	require.NoError(t, f.orders.Delete(ctx, "owner", placed.ID), "no status restriction on delete")

	all, err := f.orders.ListAll(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestList_ReturnsEveryOrderWithoutLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	const placed = 25
	for i := 0; i < placed; i++ {
		_, err := f.carts.Add(ctx, "acct", cart.Key{ProductID: "p1"}, 1)
		require.NoError(t, err)
		_, err = f.orders.PlaceOrder(ctx, "acct")
		require.NoError(t, err)
	}

	mine, err := f.orders.ListForAccount(ctx, "acct", 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, placed)

	all, err := f.orders.ListAll(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, placed)

	page, err := f.orders.ListForAccount(ctx, "acct", 10, 20)
	require.NoError(t, err)
	assert.Len(t, page, 5, "explicit limit still pages")

	capped, err := f.orders.ListAll(ctx, 1000, 0)
	require.NoError(t, err)
	assert.Len(t, capped, placed)
}

func TestListAll_JoinsCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, u := range []*user.User{
		{ID: "ana", Name: "Ana", Email: "ana@example.com", Role: user.RoleUser},
		{ID: "bo", Name: "Bo", Email: "bo@example.com", Role: user.RoleUser},
	} {
		require.NoError(t, f.db.Users().Create(ctx, u))
	}
	f.fill(t, "ana")
	anaOrder, err := f.orders.PlaceOrder(ctx, "ana")
	require.NoError(t, err)
	f.fill(t, "bo")
	boOrder, err := f.orders.PlaceOrder(ctx, "bo")
	require.NoError(t, err)
	_, err = f.db.Users().Delete(ctx, "bo")
	require.NoError(t, err)

	all, err := f.orders.ListAll(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	byID := map[string]order.AdminView{}
	for _, v := range all {
		byID[v.ID] = v
	}

	got := byID[anaOrder.ID]
	require.NotNil(t, got.User)
	assert.Equal(t, order.Customer{ID: "ana", Name: "Ana", Email: "ana@example.com"}, *got.User)
	assert.Len(t, got.Products, 2)
	assert.Nil(t, byID[boOrder.ID].User, "deleted account renders as null")
}
