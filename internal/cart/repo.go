package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	// Get returns ErrNotFound when the account has never had a cart.
	Get(ctx context.Context, accountID string) (*Cart, error)
	// Save upserts the whole cart document.
	Save(ctx context.Context, c *Cart) error
}

// PGRepo keeps one row per account with the line-items as a JSONB document.
type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Get(ctx context.Context, accountID string) (*Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		c   Cart
		raw []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT account_id, items, updated_at FROM carts WHERE account_id=$1
	`, accountID).Scan(&c.AccountID, &raw, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &c.Items); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", accountID, err)
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return &c, nil
}

func (r *PGRepo) Save(ctx context.Context, c *Cart) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	items := c.Items
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", c.AccountID, err)
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO carts (account_id, items, created_at, updated_at)
		VALUES ($1, $2::text::jsonb, NOW(), NOW())
		ON CONFLICT (account_id) DO UPDATE
		SET items = EXCLUDED.items, updated_at = NOW()
		RETURNING updated_at
	`, c.AccountID, string(raw)).Scan(&c.UpdatedAt)
}

// Collection is the MongoDB collection holding one document per account.
const Collection = "carts"

type MongoRepo struct{ col *mongo.Collection }

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{col: db.Collection(Collection)}
}

func (r *MongoRepo) Get(ctx context.Context, accountID string) (*Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Cart
	err := r.col.FindOne(ctx, bson.M{"_id": accountID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []LineItem{}
	}
	return &c, nil
}

func (r *MongoRepo) Save(ctx context.Context, c *Cart) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	items := c.Items
	if items == nil {
		items = []LineItem{}
	}
	now := time.Now().UTC()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": c.AccountID},
		bson.M{
			"$set":         bson.M{"items": items, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}
