package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/apperr"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/lock"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
)

// ProductResolver is the read-time join against the catalog.
type ProductResolver interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error)
}

// Service orchestrates cart mutations. Every mutation holds the account's cart
// lock for its whole read-modify-write.
type Service struct {
	repo     Repository
	products ProductResolver
	locks    lock.Locker
	log      *logger.Logger
}

func NewService(repo Repository, products ProductResolver, locks lock.Locker, log *logger.Logger) *Service {
	return &Service{repo: repo, products: products, locks: locks, log: log.With("service", "CartService")}
}

func (s *Service) lockCart(ctx context.Context, accountID string) (func(), error) {
	release, err := s.locks.Lock(ctx, lock.CartKey(accountID))
	if err != nil {
		return nil, fmt.Errorf("lock cart %s: %w", accountID, err)
	}
	return release, nil
}

func (s *Service) load(ctx context.Context, accountID string, create bool) (*Cart, error) {
	c, err := s.repo.Get(ctx, accountID)
	switch {
	case errors.Is(err, ErrNotFound) && create:
		return New(accountID), nil
	case errors.Is(err, ErrNotFound):
		return nil, apperr.Wrap(apperr.KindNotFound, err, "cart not found")
	case err != nil:
		return nil, fmt.Errorf("load cart %s: %w", accountID, err)
	}
	return c, nil
}

func (s *Service) resolve(ctx context.Context, ids []string) (map[string]*product.Product, error) {
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}
	return products, nil
}

func (s *Service) save(ctx context.Context, c *Cart) error {
	if err := s.repo.Save(ctx, c); err != nil {
		return fmt.Errorf("save cart %s: %w", c.AccountID, err)
	}
	return nil
}

// MaxQuantity bounds a single line, merged adds included.
const MaxQuantity = 1000

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return apperr.Validation("quantity must be a positive integer")
	}
	if quantity > MaxQuantity {
		return apperr.Validation("quantity cannot exceed %d", MaxQuantity)
	}
	return nil
}

func validateKey(k Key) error {
	if k.ProductID == "" {
		return apperr.Validation("productId is required")
	}
	return nil
}

// Add merges quantity into the account's cart, creating the cart on first use.
func (s *Service) Add(ctx context.Context, accountID string, k Key, quantity int) (View, error) {
	if err := validateKey(k); err != nil {
		return View{}, err
	}
	if err := validateQuantity(quantity); err != nil {
		return View{}, err
	}
	release, err := s.lockCart(ctx, accountID)
	if err != nil {
		return View{}, err
	}
	defer release()

	c, err := s.load(ctx, accountID, true)
	if err != nil {
		return View{}, err
	}
	products, err := s.resolve(ctx, append(c.ProductIDs(), k.ProductID))
	if err != nil {
		return View{}, err
	}
	if products[k.ProductID] == nil {
		return View{}, apperr.NotFound("product not found")
	}

	if c.QuantityOf(k)+quantity > MaxQuantity {
		return View{}, apperr.Validation("quantity cannot exceed %d", MaxQuantity)
	}
	c.Add(k, quantity)
	if err := s.save(ctx, c); err != nil {
		return View{}, err
	}
	s.log.Debug("cart item added", "account_id", accountID, "product_id", k.ProductID, "quantity", quantity)
	return BuildView(c, products), nil
}

// Update overwrites the quantity of an existing line.
func (s *Service) Update(ctx context.Context, accountID string, k Key, quantity int) (View, error) {
	if err := validateKey(k); err != nil {
		return View{}, err
	}
	if err := validateQuantity(quantity); err != nil {
		return View{}, err
	}
	release, err := s.lockCart(ctx, accountID)
	if err != nil {
		return View{}, err
	}
	defer release()

	c, err := s.load(ctx, accountID, false)
	if err != nil {
		return View{}, err
	}
	if err := c.Set(k, quantity); err != nil {
		return View{}, apperr.Wrap(apperr.KindNotFound, err, "product not in cart")
	}
	if err := s.save(ctx, c); err != nil {
		return View{}, err
	}
	return s.view(ctx, c)
}

// Remove drops the line for k. Removing an absent key returns the unchanged cart.
func (s *Service) Remove(ctx context.Context, accountID string, k Key) (View, error) {
	if err := validateKey(k); err != nil {
		return View{}, err
	}
	release, err := s.lockCart(ctx, accountID)
	if err != nil {
		return View{}, err
	}
	defer release()

	c, err := s.load(ctx, accountID, false)
	if err != nil {
		return View{}, err
	}
	if c.Remove(k) {
		if err := s.save(ctx, c); err != nil {
			return View{}, err
		}
	}
	return s.view(ctx, c)
}

// Clear empties an existing cart.
func (s *Service) Clear(ctx context.Context, accountID string) (View, error) {
	release, err := s.lockCart(ctx, accountID)
	if err != nil {
		return View{}, err
	}
	defer release()

	c, err := s.load(ctx, accountID, false)
	if err != nil {
		return View{}, err
	}
	c.Clear()
	if err := s.save(ctx, c); err != nil {
		return View{}, err
	}
	return EmptyView(), nil
}

// View returns the live-priced cart; an account without a cart gets an empty view.
func (s *Service) View(ctx context.Context, accountID string) (View, error) {
	c, err := s.repo.Get(ctx, accountID)
	if errors.Is(err, ErrNotFound) {
		return EmptyView(), nil
	}
	if err != nil {
		return View{}, fmt.Errorf("load cart %s: %w", accountID, err)
	}
	return s.view(ctx, c)
}

func (s *Service) view(ctx context.Context, c *Cart) (View, error) {
	if c.IsEmpty() {
		return EmptyView(), nil
	}
	products, err := s.resolve(ctx, c.ProductIDs())
	if err != nil {
		return View{}, err
	}
	return BuildView(c, products), nil
}
