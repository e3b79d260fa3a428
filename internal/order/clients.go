package order

import (
	"context"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/user"
)

// CartReader is the part of the cart store checkout reads from. Emptying the
// cart happens inside Repository.PlaceFromCart.
type CartReader interface {
	Get(ctx context.Context, accountID string) (*cart.Cart, error)
}

// ProductResolver resolves catalog entries by id for price capture and views.
type ProductResolver interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error)
}

// AccountResolver resolves the customers shown on the admin order listing.
type AccountResolver interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*user.User, error)
}
