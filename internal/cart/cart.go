// Package cart implements the per-account shopping cart: line-items merged by
// (product, size, color), the live-priced cart view and its persistence.
package cart

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("cart not found")
	ErrItemNotFound = errors.New("product not in cart")
)

// LineItem is one quantity-bearing entry of a cart. A nil Size or Color means the
// discriminator is absent, which is distinct from an empty string.
type LineItem struct {
	ProductID string  `json:"productId" bson:"product_id"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Size      *string `json:"size,omitempty" bson:"size,omitempty"`
	Color     *string `json:"color,omitempty" bson:"color,omitempty"`
}

// Key identifies a purchasable variant inside a cart.
type Key struct {
	ProductID string
	Size      *string
	Color     *string
}

func (it LineItem) Key() Key {
	return Key{ProductID: it.ProductID, Size: it.Size, Color: it.Color}
}

func sameOpt(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Matches compares keys exactly and case-sensitively.
func (k Key) Matches(it LineItem) bool {
	return k.ProductID == it.ProductID && sameOpt(k.Size, it.Size) && sameOpt(k.Color, it.Color)
}

type Cart struct {
	AccountID string     `json:"accountId" bson:"_id"`
	Items     []LineItem `json:"items" bson:"items"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updated_at"`
}

func New(accountID string) *Cart {
	return &Cart{AccountID: accountID, Items: []LineItem{}}
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c *Cart) index(k Key) int {
	for i, it := range c.Items {
		if k.Matches(it) {
			return i
		}
	}
	return -1
}

func copyOpt(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// QuantityOf returns the quantity on the line for k, 0 when there is none.
func (c *Cart) QuantityOf(k Key) int {
	if i := c.index(k); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// Add merges quantity into the line with the same key, or appends a new line.
func (c *Cart) Add(k Key, quantity int) {
	if i := c.index(k); i >= 0 {
		c.Items[i].Quantity += quantity
		return
	}
	c.Items = append(c.Items, LineItem{
		ProductID: k.ProductID,
		Quantity:  quantity,
		Size:      copyOpt(k.Size),
		Color:     copyOpt(k.Color),
	})
}

// Set overwrites the quantity of an existing line.
func (c *Cart) Set(k Key, quantity int) error {
	i := c.index(k)
	if i < 0 {
		return ErrItemNotFound
	}
	c.Items[i].Quantity = quantity
	return nil
}

// Remove drops every line matching k and reports whether anything was removed.
func (c *Cart) Remove(k Key) bool {
	kept := c.Items[:0]
	removed := false
	for _, it := range c.Items {
		if k.Matches(it) {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	c.Items = kept
	return removed
}

func (c *Cart) Clear() { c.Items = []LineItem{} }

// ProductIDs returns the distinct product ids referenced by the cart.
func (c *Cart) ProductIDs() []string {
	seen := make(map[string]struct{}, len(c.Items))
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
