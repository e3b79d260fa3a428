package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/kalpanaCharpe/vestir-ecommerce/internal/auth"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/cart"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/config"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/events"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/lock"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/logger"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/order"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/telemetry"
	"github.com/kalpanaCharpe/vestir-ecommerce/internal/user"
)

// @title       Vestir Storefront API
// @version     1.0
// @BasePath    /api
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("storefront stopped", "error", err)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
		if cfg.JWTSecret == "change-me" {
			log.Warn("JWT_SECRET is the development default")
		}
	}

	shutdownTracing, err := telemetry.Init(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	var locks lock.Locker = lock.NewLocal()
	if cfg.RedisAddr != "" {
		rdb, err := lock.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()
		locks = lock.NewRedis(rdb, log, cfg.LockTTL)
		log.Info("cart locks shared via redis", "addr", cfg.RedisAddr)
	}

	var pub events.Publisher = events.NewLog(log)
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info("order events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	defer pub.Close()

	tokens := auth.NewJWT(cfg.JWTSecret, cfg.TokenTTL)
	a := &app{
		serviceName: cfg.ServiceName,
		corsOrigins: cfg.CORSOrigins,
		log:         log,
		tokens:      tokens,
		products:    st.products,
		carts:       cart.NewService(st.carts, st.products, locks, log),
		orders:      order.NewService(st.orders, st.carts, st.products, st.users, locks, pub, log),
		users:       user.NewService(st.users, tokens, cfg.AdminEmails, log),
		ready:       st.ping,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	grpcSrv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("grpc health listening", "addr", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		hs.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(ctx)
		grpcSrv.GracefulStop()
		return err
	})
	return g.Wait()
}
