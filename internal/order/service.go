package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/apperr"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/events"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/lock"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/user"
)

type Service struct {
	repo     Repository
	carts    CartReader
	products ProductResolver
	accounts AccountResolver
	locks    lock.Locker
	events   events.Publisher
	log      *logger.Logger

	now   func() time.Time
	newID func() string
}

func NewService(repo Repository, carts CartReader, products ProductResolver, accounts AccountResolver, locks lock.Locker, pub events.Publisher, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		carts:    carts,
		products: products,
		accounts: accounts,
		locks:    locks,
		events:   pub,
		log:      log.With("service", "OrderService"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// PlaceOrder turns the account's cart into a pending order. Prices are captured
// from the catalog once and the total is computed from those captured prices.
// The order insert and the cart reset commit together or not at all.
func (s *Service) PlaceOrder(ctx context.Context, accountID string) (View, error) {
	release, err := s.locks.Lock(ctx, lock.CartKey(accountID))
	if err != nil {
		return View{}, fmt.Errorf("lock cart %s: %w", accountID, err)
	}
	defer release()

	c, err := s.carts.Get(ctx, accountID)
	switch {
	case errors.Is(err, cart.ErrNotFound):
		return View{}, apperr.InvalidState("cart is empty")
	case err != nil:
		return View{}, fmt.Errorf("load cart %s: %w", accountID, err)
	case c.IsEmpty():
		return View{}, apperr.InvalidState("cart is empty")
	}

	products, err := s.products.GetByIDs(ctx, c.ProductIDs())
	if err != nil {
		return View{}, fmt.Errorf("resolve products: %w", err)
	}
	items := make([]Item, 0, len(c.Items))
	for _, li := range c.Items {
		p := products[li.ProductID]
		if p == nil {
			return View{}, apperr.NotFound("product %s not found", li.ProductID)
		}
		items = append(items, Item{
			ProductID: li.ProductID,
			Quantity:  li.Quantity,
			Price:     p.Price,
			Size:      li.Size,
			Color:     li.Color,
		})
	}

	o := New(s.newID(), accountID, items, s.now())
	if err := s.repo.PlaceFromCart(ctx, o); err != nil {
		if errors.Is(err, ErrCartMissing) {
			return View{}, apperr.Wrap(apperr.KindInvalidState, err, "cart is empty")
		}
		return View{}, fmt.Errorf("place order: %w", err)
	}
	s.log.Info("order placed", "order_id", o.ID, "account_id", accountID, "total", o.TotalPrice.String(), "items", len(o.Items))

	total := o.TotalPrice
	s.publish(ctx, events.Event{
		Type: events.TypeOrderPlaced, OrderID: o.ID, AccountID: accountID,
		Status: string(o.Status), TotalPrice: &total, OccurredAt: o.CreatedAt,
	})
	return BuildView(o, products), nil
}

// SetStatus writes any valid status regardless of the current one.
func (s *Service) SetStatus(ctx context.Context, orderID, status string) (View, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return View{}, err
	}
	o, err := s.repo.UpdateStatus(ctx, orderID, st)
	if errors.Is(err, ErrNotFound) {
		return View{}, apperr.Wrap(apperr.KindNotFound, err, "order not found")
	}
	if err != nil {
		return View{}, fmt.Errorf("update order %s: %w", orderID, err)
	}
	s.publish(ctx, events.Event{
		Type: events.TypeOrderStatusChanged, OrderID: o.ID, AccountID: o.AccountID,
		Status: string(o.Status), OccurredAt: s.now().UTC(),
	})
	return s.view(ctx, o)
}

// Delete removes an order owned by accountID. A foreign order is reported exactly
// like a missing one.
func (s *Service) Delete(ctx context.Context, accountID, orderID string) error {
	ok, err := s.repo.DeleteOwned(ctx, orderID, accountID)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", orderID, err)
	}
	if !ok {
		return apperr.NotFound("order not found or not yours")
	}
	s.publish(ctx, events.Event{
		Type: events.TypeOrderDeleted, OrderID: orderID, AccountID: accountID, OccurredAt: s.now().UTC(),
	})
	return nil
}

func (s *Service) ListForAccount(ctx context.Context, accountID string, limit, offset int) ([]View, error) {
	orders, err := s.repo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders of %s: %w", accountID, err)
	}
	return s.views(ctx, orders)
}

// ListAll is the admin listing; every order carries its customer.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]AdminView, error) {
	orders, err := s.repo.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	views, err := s.views(ctx, orders)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	accounts := map[string]*user.User{}
	if ids := AccountIDs(ptrs...); len(ids) > 0 {
		if accounts, err = s.accounts.GetByIDs(ctx, ids); err != nil {
			return nil, fmt.Errorf("resolve accounts: %w", err)
		}
	}
	out := make([]AdminView, 0, len(views))
	for _, v := range views {
		out = append(out, BuildAdminView(v, accounts[v.AccountID]))
	}
	return out, nil
}

func (s *Service) view(ctx context.Context, o *Order) (View, error) {
	products, err := s.resolve(ctx, o)
	if err != nil {
		return View{}, err
	}
	return BuildView(o, products), nil
}

func (s *Service) views(ctx context.Context, orders []Order) ([]View, error) {
	ptrs := make([]*Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	products, err := s.resolve(ctx, ptrs...)
	if err != nil {
		return nil, err
	}
	out := make([]View, 0, len(orders))
	for _, o := range ptrs {
		out = append(out, BuildView(o, products))
	}
	return out, nil
}

func (s *Service) resolve(ctx context.Context, orders ...*Order) (map[string]*product.Product, error) {
	ids := ProductIDs(orders...)
	if len(ids) == 0 {
		return map[string]*product.Product{}, nil
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	return products, nil
}

// publish is best effort: the order is already committed, so a broker failure
// is logged and never returned.
func (s *Service) publish(ctx context.Context, e events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("event publish failed", "type", e.Type, "order_id", e.OrderID, "error", err)
	}
}
