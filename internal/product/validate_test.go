package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/apperr"
)

func TestCreateProductRequest_Validate(t *testing.T) {
	ok := CreateProductRequest{Name: "Tee", Category: CategoryMen, Price: decimal.NewFromInt(10), Stock: 1, Image: "x.jpg"}
	assert.NoError(t, ok.Validate())

	bad := []CreateProductRequest{
		{Category: CategoryMen, Image: "x.jpg"},
		{Name: "Tee", Category: "Pets", Image: "x.jpg"},
		{Name: "Tee", Category: CategoryMen, Price: decimal.NewFromInt(-1), Image: "x.jpg"},
		{Name: "Tee", Category: CategoryMen, Stock: -1, Image: "x.jpg"},
		{Name: "Tee", Category: CategoryMen},
	}
	for _, r := range bad {
		assert.True(t, apperr.Is(r.Validate(), apperr.KindValidation), "%+v", r)
	}
}

func TestPatch_Validate(t *testing.T) {
	assert.True(t, apperr.Is(Patch{}.Validate(), apperr.KindValidation), "empty patch")

	empty := "  "
	assert.Error(t, Patch{Name: &empty}.Validate())

	stock := 3
	assert.NoError(t, Patch{Stock: &stock}.Validate())
}

func TestPatch_Apply(t *testing.T) {
	p := Product{Name: "Tee", Price: decimal.NewFromInt(10), Stock: 5}
	price := decimal.RequireFromString("7.5")
	Patch{Price: &price}.Apply(&p)
	assert.Equal(t, "Tee", p.Name)
	assert.True(t, p.Price.Equal(price))
	assert.Equal(t, 5, p.Stock)
}

func TestQuery_Normalize(t *testing.T) {
	q := Query{Page: -3, Limit: 1000, Sort: "bogus", Search: "  tee "}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxLimit, q.Limit)
	assert.Equal(t, SortNewest, q.Sort)
	assert.Equal(t, "tee", q.Search)

	q = Query{Page: 3}.Normalize()
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Equal(t, 24, q.Offset())
}

func TestQuery_Validate(t *testing.T) {
	lo, hi := decimal.NewFromInt(50), decimal.NewFromInt(10)
	assert.Error(t, Query{MinPrice: &lo, MaxPrice: &hi}.Validate())
	assert.Error(t, Query{Category: "Pets"}.Validate())
	assert.NoError(t, Query{Category: CategoryKids}.Validate())
}

func TestNewPage(t *testing.T) {
	p := NewPage(nil, 25, Query{Limit: 12})
	assert.NotNil(t, p.Products)
	assert.Equal(t, 3, p.TotalPages)
}
