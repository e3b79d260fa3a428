package cart_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/apperr"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/lock"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/memstore"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
)

func ptr(s string) *string { return &s }

func newService(t *testing.T) (*cart.Service, *memstore.DB, *product.Product) {
	t.Helper()
	db := memstore.New()
	p := &product.Product{ID: "p1", Name: "Tee", Category: product.CategoryMen, Price: decimal.RequireFromString("19.99"), Image: "tee.png"}
	require.NoError(t, db.Products().Create(context.Background(), p))
	svc := cart.NewService(db.Carts(), db.Products(), lock.NewLocal(), logger.NewNop())
	return svc, db, p
}

func TestService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	k := cart.Key{ProductID: "p1", Size: ptr("M"), Color: ptr("Black")}

	_, err := svc.Add(ctx, "acct", k, 2)
	require.NoError(t, err)
	v, err := svc.Add(ctx, "acct", k, 3)
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 5, v.Items[0].Quantity)
	assert.True(t, v.Total.Equal(decimal.RequireFromString("99.95")))

	v, err = svc.Update(ctx, "acct", k, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Items[0].Quantity)

	v, err = svc.Remove(ctx, "acct", k)
	require.NoError(t, err)
	assert.Empty(t, v.Items)
	assert.True(t, v.Total.IsZero())
}

func TestService_ViewWithoutCartIsEmpty(t *testing.T) {
	svc, _, _ := newService(t)
	v, err := svc.View(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, v.Items)
	assert.Empty(t, v.Items)
	assert.True(t, v.Total.IsZero())
}

func TestService_MutationsWithoutCartAreNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	k := cart.Key{ProductID: "p1"}

	_, err := svc.Update(ctx, "nobody", k, 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = svc.Remove(ctx, "nobody", k)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = svc.Clear(ctx, "nobody")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_UnknownKey(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	_, err := svc.Add(ctx, "acct", cart.Key{ProductID: "p1", Size: ptr("M")}, 1)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "acct", cart.Key{ProductID: "p1", Size: ptr("L")}, 4)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	v, err := svc.Remove(ctx, "acct", cart.Key{ProductID: "p1", Size: ptr("L")})
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 1, v.Items[0].Quantity)
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)

	_, err := svc.Add(ctx, "acct", cart.Key{ProductID: "p1"}, 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Add(ctx, "acct", cart.Key{}, 1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Add(ctx, "acct", cart.Key{ProductID: "ghost"}, 1)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestService_QuantityIsBounded(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	k := cart.Key{ProductID: "p1"}

	_, err := svc.Add(ctx, "acct", k, cart.MaxQuantity+1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Add(ctx, "acct", k, int(^uint(0)>>1))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "no overflow on huge adds")

	v, err := svc.Add(ctx, "acct", k, cart.MaxQuantity-1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "acct", k, 2)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "merged total over the bound")
	v, err = svc.Add(ctx, "acct", k, 1)
	require.NoError(t, err)
	assert.Equal(t, cart.MaxQuantity, v.Items[0].Quantity)

	_, err = svc.Update(ctx, "acct", k, cart.MaxQuantity+1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	v, err = svc.View(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, cart.MaxQuantity, v.Items[0].Quantity, "rejected update leaves the line alone")
}

func TestService_ClearKeepsCart(t *testing.T) {
	ctx := context.Background()
	svc, db, _ := newService(t)
	_, err := svc.Add(ctx, "acct", cart.Key{ProductID: "p1"}, 1)
	require.NoError(t, err)

	v, err := svc.Clear(ctx, "acct")
	require.NoError(t, err)
	assert.Empty(t, v.Items)

	c, err := db.Carts().Get(ctx, "acct")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestService_DeletedProductContributesZero(t *testing.T) {
	ctx := context.Background()
	svc, db, p := newService(t)
	_, err := svc.Add(ctx, "acct", cart.Key{ProductID: p.ID}, 2)
	require.NoError(t, err)
	_, err = db.Products().Delete(ctx, p.ID)
	require.NoError(t, err)

	v, err := svc.View(ctx, "acct")
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Nil(t, v.Items[0].Product)
	assert.True(t, v.Total.IsZero())
}

func TestService_ConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t)
	k := cart.Key{ProductID: "p1", Size: ptr("M")}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Add(ctx, "acct", k, 1); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	v, err := svc.View(ctx, "acct")
	require.NoError(t, err)
	require.Len(t, v.Items, 1)
	assert.Equal(t, 40, v.Items[0].Quantity)
}
