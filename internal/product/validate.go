package product

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/apperr"
)

func (r CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperr.Validation("product name is required")
	}
	if !r.Category.Valid() {
		return apperr.Validation("category must be one of Men, Women, Kids")
	}
	if r.Price.IsNegative() {
		return apperr.Validation("price must be a non-negative number")
	}
	if r.Stock < 0 {
		return apperr.Validation("stock must be a non-negative integer")
	}
	if strings.TrimSpace(r.Image) == "" {
		return apperr.Validation("image is required")
	}
	return nil
}

func (r CreateProductRequest) Product() Product {
	return Product{
		Name:        strings.TrimSpace(r.Name),
		Category:    r.Category,
		Price:       r.Price,
		Stock:       r.Stock,
		Description: r.Description,
		Image:       strings.TrimSpace(r.Image),
	}
}

func (p Patch) Validate() error {
	if p.Empty() {
		return apperr.Validation("nothing to update")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return apperr.Validation("product name cannot be empty")
	}
	if p.Category != nil && !p.Category.Valid() {
		return apperr.Validation("category must be one of Men, Women, Kids")
	}
	if p.Price != nil && p.Price.IsNegative() {
		return apperr.Validation("price must be a non-negative number")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return apperr.Validation("stock must be a non-negative integer")
	}
	return nil
}

type Sort string

const (
	SortNewest    Sort = ""
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortNameAsc   Sort = "name_asc"
)

const (
	DefaultLimit = 12
	MaxLimit     = 100
)

type Query struct {
	Search   string
	Category Category
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     Sort
	Page     int
	Limit    int
}

// Normalize clamps paging and drops unknown sort keys.
func (q Query) Normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	switch q.Sort {
	case SortPriceAsc, SortPriceDesc, SortNameAsc:
	default:
		q.Sort = SortNewest
	}
	return q
}

func (q Query) Offset() int { return (q.Page - 1) * q.Limit }

func (q Query) Validate() error {
	if q.Category != "" && !q.Category.Valid() {
		return apperr.Validation("category must be one of Men, Women, Kids")
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return apperr.Validation("minPrice cannot exceed maxPrice")
	}
	return nil
}

// NewPage assembles a listing page for the given normalized query.
func NewPage(items []Product, total int64, q Query) Page {
	if items == nil {
		items = []Product{}
	}
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return Page{Products: items, Total: total, TotalPages: pages}
}
