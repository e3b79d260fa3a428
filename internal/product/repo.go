// Package product provides the catalog model, its repository interface and the
// PostgreSQL and MongoDB implementations.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("product not found")
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	// GetByIDs resolves a set of ids in one round trip; missing ids are absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error)
	List(ctx context.Context, q Query) ([]Product, int64, error)
	Update(ctx context.Context, id string, patch Patch) (*Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productColumns = `id, name, category, price::text, stock, description, image, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p     Product
		price string
		cat   string
	)
	if err := row.Scan(&p.ID, &p.Name, &cat, &price, &p.Stock, &p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("product %s: bad price %q: %w", p.ID, price, err)
	}
	p.Price = d
	p.Category = Category(cat)
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, category, price, stock, description, image, created_at, updated_at)
		VALUES ($1,$2,$3,$4::text::numeric,$5,$6,$7,NOW(),NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.Name, string(p.Category), p.Price.String(), p.Stock, p.Description, p.Image).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error) {
	out := make(map[string]*Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

var pgOrderBy = map[Sort]string{
	SortNewest:    "created_at DESC",
	SortPriceAsc:  "price ASC, created_at DESC",
	SortPriceDesc: "price DESC, created_at DESC",
	SortNameAsc:   "name ASC",
}

// likeEscape neutralizes ILIKE wildcards so search stays a plain substring match.
func likeEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func decimalArg(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.Normalize()
	where := `
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)
		  AND ($3::text IS NULL OR price >= $3::text::numeric)
		  AND ($4::text IS NULL OR price <= $4::text::numeric)`
	args := []any{likeEscape(q.Search), string(q.Category), decimalArg(q.MinPrice), decimalArg(q.MaxPrice)}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+` FROM products`+where+`
		ORDER BY `+pgOrderBy[q.Sort]+`
		LIMIT $5 OFFSET $6
	`, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, id string, patch Patch) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var category *string
	if patch.Category != nil {
		c := string(*patch.Category)
		category = &c
	}
	p, err := scanProduct(r.db.QueryRow(ctx, `
		UPDATE products
		SET name        = COALESCE($2, name),
		    category    = COALESCE($3, category),
		    price       = COALESCE($4::text::numeric, price),
		    stock       = COALESCE($5, stock),
		    description = COALESCE($6, description),
		    image       = COALESCE($7, image),
		    updated_at  = NOW()
		WHERE id = $1
		RETURNING `+productColumns,
		id, patch.Name, category, decimalArg(patch.Price), patch.Stock, patch.Description, patch.Image))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
