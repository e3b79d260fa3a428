package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrCartMissing aborts a checkout whose cart vanished before it could be emptied.
	ErrCartMissing = errors.New("cart missing at checkout")
)

type Repository interface {
	// PlaceFromCart stores o and empties the cart of o.AccountID as one unit:
	// either both happen or neither does.
	PlaceFromCart(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]Order, error)
	ListAll(ctx context.Context, limit, offset int) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	DeleteOwned(ctx context.Context, id, accountID string) (bool, error)
}

// MaxPage caps an explicit page size. A limit <= 0 lists every order.
const MaxPage = 100

func clampPage(limit, offset int) (int, int) {
	switch {
	case limit < 0:
		limit = 0
	case limit > MaxPage:
		limit = MaxPage
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// limitArg maps "no limit" to NULL, which Postgres reads as LIMIT ALL.
func limitArg(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) PlaceFromCart(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, account_id, status, total_price, created_at, updated_at)
		VALUES ($1,$2,$3,$4::text::numeric,$5,$5)
	`, o.ID, o.AccountID, string(o.Status), o.TotalPrice.String(), o.CreatedAt); err != nil {
		return err
	}

	for i, it := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, position, product_id, quantity, price, size, color)
			VALUES ($1,$2,$3,$4,$5::text::numeric,$6,$7)
		`, o.ID, i, it.ProductID, it.Quantity, it.Price.String(), it.Size, it.Color); err != nil {
			return err
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE carts SET items = '[]'::jsonb, updated_at = NOW() WHERE account_id = $1
	`, o.AccountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCartMissing
	}
	return tx.Commit(ctx)
}

const orderColumns = `id, account_id, status, total_price::text, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o      Order
		status string
		total  string
	)
	if err := row.Scan(&o.ID, &o.AccountID, &status, &total, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("order %s: bad total %q: %w", o.ID, total, err)
	}
	o.Status = Status(status)
	o.TotalPrice = d
	o.Items = []Item{}
	return &o, nil
}

// attachItems loads the lines of every order in one query.
func (r *PGRepo) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	rows, err := r.db.Query(ctx, `
		SELECT order_id, product_id, quantity, price::text, size, color
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID string
			it      Item
			price   string
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Quantity, &price, &it.Size, &it.Color); err != nil {
			return err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("order %s: bad item price %q: %w", orderID, price, err)
		}
		if o := byID[orderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, r.attachItems(ctx, []*Order{o})
}

func (r *PGRepo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	var ptrs []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ptrs = append(ptrs, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, ptrs); err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(ptrs))
	for _, o := range ptrs {
		out = append(out, *o)
	}
	return out, nil
}

func (r *PGRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset = clampPage(limit, offset)
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE account_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, accountID, limitArg(limit), offset)
}

func (r *PGRepo) ListAll(ctx context.Context, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit, offset = clampPage(limit, offset)
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limitArg(limit), offset)
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+orderColumns, id, string(status)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, r.attachItems(ctx, []*Order{o})
}

func (r *PGRepo) DeleteOwned(ctx context.Context, id, accountID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id=$1 AND account_id=$2`, id, accountID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
