package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the MongoDB collection holding catalog documents.
const Collection = "products"

type productDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Category    string               `bson:"category"`
	Price       primitive.Decimal128 `bson:"price"`
	Stock       int                  `bson:"stock"`
	Description string               `bson:"description,omitempty"`
	Image       string               `bson:"image,omitempty"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

// ToDecimal128 converts a decimal for storage in a BSON document.
func ToDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	return primitive.ParseDecimal128(d.String())
}

// FromDecimal128 converts a stored BSON decimal back.
func FromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(d.String())
}

func toDoc(p *Product) (productDoc, error) {
	price, err := ToDecimal128(p.Price)
	if err != nil {
		return productDoc{}, fmt.Errorf("product price: %w", err)
	}
	return productDoc{
		ID: p.ID, Name: p.Name, Category: string(p.Category), Price: price, Stock: p.Stock,
		Description: p.Description, Image: p.Image, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}, nil
}

func (d productDoc) product() (*Product, error) {
	price, err := FromDecimal128(d.Price)
	if err != nil {
		return nil, fmt.Errorf("product %s: bad price: %w", d.ID, err)
	}
	return &Product{
		ID: d.ID, Name: d.Name, Category: Category(d.Category), Price: price, Stock: d.Stock,
		Description: d.Description, Image: d.Image, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}, nil
}

type MongoRepo struct{ col *mongo.Collection }

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{col: db.Collection(Collection)}
}

func (r *MongoRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	doc, err := toDoc(p)
	if err != nil {
		return err
	}
	_, err = r.col.InsertOne(ctx, doc)
	return err
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc productDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.product()
}

func (r *MongoRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*Product, error) {
	out := make(map[string]*Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		p, err := d.product()
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, nil
}

var mongoSort = map[Sort]bson.D{
	SortNewest:    {{Key: "created_at", Value: -1}},
	SortPriceAsc:  {{Key: "price", Value: 1}, {Key: "created_at", Value: -1}},
	SortPriceDesc: {{Key: "price", Value: -1}, {Key: "created_at", Value: -1}},
	SortNameAsc:   {{Key: "name", Value: 1}},
}

func mongoFilter(q Query) (bson.M, error) {
	filter := bson.M{}
	if q.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
	}
	if q.Category != "" {
		filter["category"] = string(q.Category)
	}
	price := bson.M{}
	if q.MinPrice != nil {
		v, err := ToDecimal128(*q.MinPrice)
		if err != nil {
			return nil, err
		}
		price["$gte"] = v
	}
	if q.MaxPrice != nil {
		v, err := ToDecimal128(*q.MaxPrice)
		if err != nil {
			return nil, err
		}
		price["$lte"] = v
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	return filter, nil
}

func (r *MongoRepo) List(ctx context.Context, q Query) ([]Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.Normalize()
	filter, err := mongoFilter(q)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(mongoSort[q.Sort]).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	out := make([]Product, 0, len(docs))
	for _, d := range docs {
		p, err := d.product()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	return out, total, nil
}

func (r *MongoRepo) Update(ctx context.Context, id string, patch Patch) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Category != nil {
		set["category"] = string(*patch.Category)
	}
	if patch.Price != nil {
		v, err := ToDecimal128(*patch.Price)
		if err != nil {
			return nil, err
		}
		set["price"] = v
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}

	var doc productDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.product()
}

func (r *MongoRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
