package cart

import (
	"github.com/shopspring/decimal"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
)

// ItemView is a cart line joined with the current product record. Product is nil
// when the referenced product no longer exists.
type ItemView struct {
	Product  *product.Product `json:"product"`
	Quantity int              `json:"quantity"`
	Size     *string          `json:"size,omitempty"`
	Color    *string          `json:"color,omitempty"`
}

// View is the read model returned by every cart operation.
// swagger:model CartView
type View struct {
	Items []ItemView      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func EmptyView() View {
	return View{Items: []ItemView{}, Total: decimal.Zero}
}

// BuildView joins c against products and totals the current prices; a missing
// product contributes zero.
func BuildView(c *Cart, products map[string]*product.Product) View {
	if c == nil {
		return EmptyView()
	}
	v := View{Items: make([]ItemView, 0, len(c.Items)), Total: decimal.Zero}
	for _, it := range c.Items {
		p := products[it.ProductID]
		v.Items = append(v.Items, ItemView{Product: p, Quantity: it.Quantity, Size: it.Size, Color: it.Color})
		if p != nil {
			v.Total = v.Total.Add(p.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	return v
}
