// Package memstore is a process-local implementation of every repository,
// used by STORE_DRIVER=memory and by tests. All collections share one mutex so
// checkout can write an order and empty a cart atomically.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/order"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/user"
)

var (
	_ product.Repository = (*Products)(nil)
	_ cart.Repository    = (*Carts)(nil)
	_ order.Repository   = (*Orders)(nil)
	_ user.Repository    = (*Users)(nil)
)

type DB struct {
	mu       sync.RWMutex
	seq      int64
	products map[string]productRow
	carts    map[string]cart.Cart
	orders   map[string]orderRow
	users    map[string]userRow
	now      func() time.Time
}

type productRow struct {
	p   product.Product
	seq int64
}

type orderRow struct {
	o   order.Order
	seq int64
}

type userRow struct {
	u   user.User
	seq int64
}

func New() *DB {
	return &DB{
		products: make(map[string]productRow),
		carts:    make(map[string]cart.Cart),
		orders:   make(map[string]orderRow),
		users:    make(map[string]userRow),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (db *DB) next() int64 {
	db.seq++
	return db.seq
}

func (db *DB) Products() *Products { return &Products{db: db} }
func (db *DB) Carts() *Carts       { return &Carts{db: db} }
func (db *DB) Orders() *Orders     { return &Orders{db: db} }
func (db *DB) Users() *Users       { return &Users{db: db} }

func cloneOpt(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneCart(c cart.Cart) cart.Cart {
	items := make([]cart.LineItem, len(c.Items))
	for i, it := range c.Items {
		it.Size, it.Color = cloneOpt(it.Size), cloneOpt(it.Color)
		items[i] = it
	}
	c.Items = items
	return c
}

func cloneOrder(o order.Order) order.Order {
	items := make([]order.Item, len(o.Items))
	for i, it := range o.Items {
		it.Size, it.Color = cloneOpt(it.Size), cloneOpt(it.Color)
		items[i] = it
	}
	o.Items = items
	return o
}

// Products implements product.Repository.
type Products struct{ db *DB }

func (r *Products) Create(_ context.Context, p *product.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := r.db.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.db.products[p.ID] = productRow{p: *p, seq: r.db.next()}
	return nil
}

func (r *Products) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	p := row.p
	return &p, nil
}

func (r *Products) GetByIDs(_ context.Context, ids []string) (map[string]*product.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make(map[string]*product.Product, len(ids))
	for _, id := range ids {
		if row, ok := r.db.products[id]; ok {
			p := row.p
			out[id] = &p
		}
	}
	return out, nil
}

func matches(p product.Product, q product.Query) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.MinPrice != nil && p.Price.LessThan(*q.MinPrice) {
		return false
	}
	if q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice) {
		return false
	}
	return true
}

func (r *Products) List(_ context.Context, q product.Query) ([]product.Product, int64, error) {
	q = q.Normalize()

	r.db.mu.RLock()
	rows := make([]productRow, 0, len(r.db.products))
	for _, row := range r.db.products {
		if matches(row.p, q) {
			rows = append(rows, row)
		}
	}
	r.db.mu.RUnlock()

	newest := func(i, j int) bool { return rows[i].seq > rows[j].seq }
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].p, rows[j].p
		switch q.Sort {
		case product.SortPriceAsc:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case product.SortPriceDesc:
			if !a.Price.Equal(b.Price) {
				return a.Price.GreaterThan(b.Price)
			}
		case product.SortNameAsc:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}
		return newest(i, j)
	})

	total := int64(len(rows))
	start := q.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + q.Limit
	if end > len(rows) {
		end = len(rows)
	}
	out := make([]product.Product, 0, end-start)
	for _, row := range rows[start:end] {
		out = append(out, row.p)
	}
	return out, total, nil
}

func (r *Products) Update(_ context.Context, id string, patch product.Patch) (*product.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	patch.Apply(&row.p)
	row.p.UpdatedAt = r.db.now()
	r.db.products[id] = row
	p := row.p
	return &p, nil
}

func (r *Products) Delete(_ context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.products[id]; !ok {
		return false, nil
	}
	delete(r.db.products, id)
	return true, nil
}

// Carts implements cart.Repository.
type Carts struct{ db *DB }

func (r *Carts) Get(_ context.Context, accountID string) (*cart.Cart, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.carts[accountID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	c = cloneCart(c)
	return &c, nil
}

func (r *Carts) Save(_ context.Context, c *cart.Cart) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c.UpdatedAt = r.db.now()
	r.db.carts[c.AccountID] = cloneCart(*c)
	return nil
}

// Orders implements order.Repository.
type Orders struct{ db *DB }

func (r *Orders) PlaceFromCart(_ context.Context, o *order.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.carts[o.AccountID]
	if !ok {
		return order.ErrCartMissing
	}
	r.db.orders[o.ID] = orderRow{o: cloneOrder(*o), seq: r.db.next()}
	c.Items = []cart.LineItem{}
	c.UpdatedAt = r.db.now()
	r.db.carts[o.AccountID] = c
	return nil
}

func (r *Orders) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o := cloneOrder(row.o)
	return &o, nil
}

func (r *Orders) list(keep func(order.Order) bool, limit, offset int) []order.Order {
	if limit > order.MaxPage {
		limit = order.MaxPage
	}
	if offset < 0 {
		offset = 0
	}

	r.db.mu.RLock()
	rows := make([]orderRow, 0)
	for _, row := range r.db.orders {
		if keep(row.o) {
			rows = append(rows, row)
		}
	}
	r.db.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	out := []order.Order{}
	for i := offset; i < len(rows) && (limit <= 0 || len(out) < limit); i++ {
		out = append(out, cloneOrder(rows[i].o))
	}
	return out
}

func (r *Orders) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]order.Order, error) {
	return r.list(func(o order.Order) bool { return o.AccountID == accountID }, limit, offset), nil
}

func (r *Orders) ListAll(_ context.Context, limit, offset int) ([]order.Order, error) {
	return r.list(func(order.Order) bool { return true }, limit, offset), nil
}

func (r *Orders) UpdateStatus(_ context.Context, id string, status order.Status) (*order.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	row.o.Status = status
	row.o.UpdatedAt = r.db.now()
	r.db.orders[id] = row
	o := cloneOrder(row.o)
	return &o, nil
}

func (r *Orders) DeleteOwned(_ context.Context, id, accountID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.orders[id]
	if !ok || row.o.AccountID != accountID {
		return false, nil
	}
	delete(r.db.orders, id)
	return true, nil
}

// Users implements user.Repository.
type Users struct{ db *DB }

func (r *Users) emailTaken(email, exceptID string) bool {
	for id, row := range r.db.users {
		if id != exceptID && row.u.Email == email {
			return true
		}
	}
	return false
}

func (r *Users) Create(_ context.Context, u *user.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[u.ID]; ok || r.emailTaken(u.Email, "") {
		return user.ErrAlreadyExist
	}
	now := r.db.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.db.users[u.ID] = userRow{u: *u, seq: r.db.next()}
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	u := row.u
	return &u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, row := range r.db.users {
		if row.u.Email == email {
			u := row.u
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *Users) GetByIDs(_ context.Context, ids []string) (map[string]*user.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make(map[string]*user.User, len(ids))
	for _, id := range ids {
		if row, ok := r.db.users[id]; ok {
			u := row.u
			out[id] = &u
		}
	}
	return out, nil
}

func (r *Users) Update(_ context.Context, u *user.User, updatePassword bool) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	row, ok := r.db.users[u.ID]
	if !ok {
		return user.ErrNotFound
	}
	if u.Email != "" && r.emailTaken(u.Email, u.ID) {
		return user.ErrAlreadyExist
	}
	if u.Name != "" {
		row.u.Name = u.Name
	}
	if u.Email != "" {
		row.u.Email = u.Email
	}
	if updatePassword {
		row.u.PasswordHash = u.PasswordHash
	}
	row.u.UpdatedAt = r.db.now()
	r.db.users[u.ID] = row
	return nil
}

func (r *Users) Delete(_ context.Context, id string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return false, nil
	}
	delete(r.db.users, id)
	return true, nil
}

func (r *Users) List(_ context.Context) ([]user.User, error) {
	r.db.mu.RLock()
	rows := make([]userRow, 0, len(r.db.users))
	for _, row := range r.db.users {
		rows = append(rows, row)
	}
	r.db.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.u)
	}
	return out, nil
}
