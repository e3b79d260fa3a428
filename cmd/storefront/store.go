package main

import (
	"context"
	"fmt"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/config"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/memstore"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/mongostore"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/order"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/pgstore"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/product"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/user"
)

// store bundles the repositories of one backend.
type store struct {
	products product.Repository
	carts    cart.Repository
	orders   order.Repository
	users    user.Repository
	ping     func(ctx context.Context) error
	close    func()
}

func openStore(ctx context.Context, cfg config.Config, log *logger.Logger) (*store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgstore.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := pgstore.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("store ready", "driver", cfg.StoreDriver)
		return &store{
			products: product.NewPGRepo(pool),
			carts:    cart.NewPGRepo(pool),
			orders:   order.NewPGRepo(pool),
			users:    user.NewPGRepo(pool),
			ping:     pool.Ping,
			close:    pool.Close,
		}, nil

	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB)
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		log.Info("store ready", "driver", cfg.StoreDriver, "database", cfg.MongoDB)
		return &store{
			products: product.NewMongoRepo(db),
			carts:    cart.NewMongoRepo(db),
			orders:   order.NewMongoRepo(db),
			users:    user.NewMongoRepo(db),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:    func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.DriverMemory:
		db := memstore.New()
		log.Warn("using in-memory store; data is lost on restart")
		return &store{
			products: db.Products(),
			carts:    db.Carts(),
			orders:   db.Orders(),
			users:    db.Users(),
			close:    func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
