package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/apperr"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", apperr.Validation("invalid status %q", s)
}

// Terminal reports whether the nominal lifecycle ends at s. Writes are not
// restricted by it; any status may be set at any time.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Item is an order line. Price is the catalog price captured at checkout and is
// never re-read from the product afterwards.
type Item struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Size      *string         `json:"size,omitempty"`
	Color     *string         `json:"color,omitempty"`
}

type Order struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"accountId"`
	Items      []Item          `json:"products"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// New builds a pending order and computes its total once from the frozen item prices.
func New(id, accountID string, items []Item, now time.Time) *Order {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	now = now.UTC()
	return &Order{
		ID:         id,
		AccountID:  accountID,
		Items:      items,
		TotalPrice: total,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
