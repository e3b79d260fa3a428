package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
)

// Collection is the MongoDB collection holding orders with embedded lines.
const Collection = "orders"

type itemDoc struct {
	ProductID string               `bson:"product_id"`
	Quantity  int                  `bson:"quantity"`
	Price     primitive.Decimal128 `bson:"price"`
	Size      *string              `bson:"size,omitempty"`
	Color     *string              `bson:"color,omitempty"`
}

type orderDoc struct {
	ID         string               `bson:"_id"`
	AccountID  string               `bson:"account_id"`
	Items      []itemDoc            `bson:"items"`
	TotalPrice primitive.Decimal128 `bson:"total_price"`
	Status     string               `bson:"status"`
	CreatedAt  time.Time            `bson:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at"`
}

func toDoc(o *Order) (orderDoc, error) {
	total, err := product.ToDecimal128(o.TotalPrice)
	if err != nil {
		return orderDoc{}, fmt.Errorf("order total: %w", err)
	}
	items := make([]itemDoc, 0, len(o.Items))
	for _, it := range o.Items {
		price, err := product.ToDecimal128(it.Price)
		if err != nil {
			return orderDoc{}, fmt.Errorf("order item price: %w", err)
		}
		items = append(items, itemDoc{
			ProductID: it.ProductID, Quantity: it.Quantity, Price: price, Size: it.Size, Color: it.Color,
		})
	}
	return orderDoc{
		ID: o.ID, AccountID: o.AccountID, Items: items, TotalPrice: total,
		Status: string(o.Status), CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt,
	}, nil
}

func (d orderDoc) order() (*Order, error) {
	total, err := product.FromDecimal128(d.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("order %s: bad total: %w", d.ID, err)
	}
	items := make([]Item, 0, len(d.Items))
	for _, it := range d.Items {
		price, err := product.FromDecimal128(it.Price)
		if err != nil {
			return nil, fmt.Errorf("order %s: bad item price: %w", d.ID, err)
		}
		items = append(items, Item{
			ProductID: it.ProductID, Quantity: it.Quantity, Price: price, Size: it.Size, Color: it.Color,
		})
	}
	return &Order{
		ID: d.ID, AccountID: d.AccountID, Items: items, TotalPrice: total,
		Status: Status(d.Status), CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}, nil
}

// MongoRepo needs a replica set (or sharded cluster): checkout runs in a
// multi-document transaction spanning orders and carts.
type MongoRepo struct {
	client *mongo.Client
	col    *mongo.Collection
	carts  *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		client: db.Client(),
		col:    db.Collection(Collection),
		carts:  db.Collection(cart.Collection),
	}
}

func (r *MongoRepo) PlaceFromCart(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc, err := toDoc(o)
	if err != nil {
		return err
	}
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		if _, err := r.col.InsertOne(sc, doc); err != nil {
			return nil, err
		}
		res, err := r.carts.UpdateOne(sc,
			bson.M{"_id": o.AccountID},
			bson.M{"$set": bson.M{"items": bson.A{}, "updated_at": time.Now().UTC()}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrCartMissing
		}
		return nil, nil
	})
	return err
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var d orderDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d.order()
}

func (r *MongoRepo) find(ctx context.Context, filter bson.M, limit, offset int) ([]Order, error) {
	limit, offset = clampPage(limit, offset)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Order{}
	for cur.Next(ctx) {
		var d orderDoc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		o, err := d.order()
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, cur.Err()
}

func (r *MongoRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.find(ctx, bson.M{"account_id": accountID}, limit, offset)
}

func (r *MongoRepo) ListAll(ctx context.Context, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *MongoRepo) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var d orderDoc
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d.order()
}

func (r *MongoRepo) DeleteOwned(ctx context.Context, id, accountID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "account_id": accountID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
