package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryMen   Category = "Men"
	CategoryWomen Category = "Women"
	CategoryKids  Category = "Kids"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMen, CategoryWomen, CategoryKids:
		return true
	}
	return false
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    Category        `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Name        *string
	Category    *Category
	Price       *decimal.Decimal
	Stock       *int
	Description *string
	Image       *string
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil &&
		p.Stock == nil && p.Description == nil && p.Image == nil
}

// Apply copies the set fields of p onto dst.
func (p Patch) Apply(dst *Product) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Stock != nil {
		dst.Stock = *p.Stock
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Image != nil {
		dst.Image = *p.Image
	}
}

// Page is the paginated response of a catalog listing.
// swagger:model
type Page struct {
	Products   []Product `json:"products"`
	Total      int64     `json:"total"`
	TotalPages int       `json:"totalPages"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name        string          `json:"name"        example:"Linen Shirt"`
	Category    Category        `json:"category"    example:"Men"`
	Price       decimal.Decimal `json:"price"       example:"49.90"`
	Stock       int             `json:"stock"       example:"10"`
	Description string          `json:"description" example:"Relaxed fit"`
	Image       string          `json:"image"       example:"https://cdn.vestir.shop/p/linen.jpg"`
}

// UpdateProductRequest payload of partial update.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Category    *Category        `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
}

func (r UpdateProductRequest) Patch() Patch {
	return Patch{
		Name:        r.Name,
		Category:    r.Category,
		Price:       r.Price,
		Stock:       r.Stock,
		Description: r.Description,
		Image:       r.Image,
	}
}
