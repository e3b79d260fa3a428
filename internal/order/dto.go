package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/user"
)

// UpdateStatusRequest payload of the admin status change.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status string `json:"status" example:"Shipped"`
}

// ItemView is an order line with the current product joined in. Price stays the
// checkout price; Product is nil once the product was deleted.
type ItemView struct {
	Product   *product.Product `json:"product"`
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Size      *string          `json:"size,omitempty"`
	Color     *string          `json:"color,omitempty"`
}

// View is the order read model.
// swagger:model OrderView
type View struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"accountId"`
	Products   []ItemView      `json:"products"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Customer is the account summary embedded in admin listings.
// swagger:model OrderCustomer
type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdminView is an order with its customer joined in. User is nil once the
// account was deleted.
// swagger:model AdminOrderView
type AdminView struct {
	View
	User *Customer `json:"user"`
}

// ProductIDs returns the distinct product ids referenced by orders.
func ProductIDs(orders ...*Order) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, o := range orders {
		for _, it := range o.Items {
			if _, ok := seen[it.ProductID]; ok {
				continue
			}
			seen[it.ProductID] = struct{}{}
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

func BuildView(o *Order, products map[string]*product.Product) View {
	v := View{
		ID:         o.ID,
		AccountID:  o.AccountID,
		Products:   make([]ItemView, 0, len(o.Items)),
		TotalPrice: o.TotalPrice,
		Status:     o.Status,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	for _, it := range o.Items {
		v.Products = append(v.Products, ItemView{
			Product:   products[it.ProductID],
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Size:      it.Size,
			Color:     it.Color,
		})
	}
	return v
}

// AccountIDs returns the distinct account ids of orders.
func AccountIDs(orders ...*Order) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, o := range orders {
		if _, ok := seen[o.AccountID]; ok {
			continue
		}
		seen[o.AccountID] = struct{}{}
		ids = append(ids, o.AccountID)
	}
	return ids
}

func BuildAdminView(v View, u *user.User) AdminView {
	av := AdminView{View: v}
	if u != nil {
		av.User = &Customer{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return av
}
