package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Amit9DeV/NexiCart-sub001/internal/auth"
	"github.com/Amit9DeV/NexiCart-sub001/internal/cache"
	"github.com/Amit9DeV/NexiCart-sub001/internal/config"
	"github.com/Amit9DeV/NexiCart-sub001/internal/events"
	h "github.com/Amit9DeV/NexiCart-sub001/internal/http"
	"github.com/Amit9DeV/NexiCart-sub001/internal/logger"
	"github.com/Amit9DeV/NexiCart-sub001/internal/repository"
	"github.com/Amit9DeV/NexiCart-sub001/internal/service"
	"github.com/Amit9DeV/NexiCart-sub001/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "nexicart-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	// Set up MongoDB connection
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	db, err := repository.ConnectMongoDB(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			log.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()
	if err := repository.RunMigrations(db); err != nil {
		return err
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	cartRepo := repository.NewCartRepository(db)

	checks := []h.HealthCheck{{
		Name:     "mongo",
		Probe:    h.ProbeFunc(func(ctx context.Context) error { return db.Client().Ping(ctx, nil) }),
		Critical: true,
	}}

	var (
		cartCache    cache.CartCache    = cache.Nop{}
		catalogCache cache.CatalogCache = cache.Nop{}
	)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis ping failed, cache reads will fall through", zap.Error(err))
		} else {
			log.Info("redis ping succeeded", zap.String("addr", cfg.Redis.Addr))
		}

		rc := cache.NewRedisCache(redisClient, cfg.Redis.TTL)
		cartCache, catalogCache = rc, rc
		checks = append(checks, h.HealthCheck{
			Name:  "redis",
			Probe: h.ProbeFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
		})
	}

	g, gctx := errgroup.WithContext(ctx)

	carts := service.NewCartService(cartRepo, productRepo, cartCache, log.Named("cart"))

	var publisher service.OrderPublisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		pub := events.NewKafkaPublisher(cfg.Kafka.OrdersTopic, log.Named("events"), cfg.Kafka.Brokers...)
		defer pub.Close()
		publisher = pub

		consumer := events.NewCartConsumer(carts, cfg.Kafka.OrdersTopic, cfg.Kafka.ConsumerGroup, log.Named("events"), cfg.Kafka.Brokers...)
		defer consumer.Close()
		g.Go(func() error { return consumer.Run(gctx) })

		checks = append(checks, h.HealthCheck{
			Name: "events",
			Probe: h.ProbeFunc(func(context.Context) error {
				if pub.State() == gobreaker.StateOpen {
					return errors.New("publisher circuit breaker is open")
				}
				return nil
			}),
		})
		log.Info("order events enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrdersTopic))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	products := service.NewProductService(productRepo, catalogCache, log.Named("products"))

	router := h.NewRouter(h.RouterDependencies{
		Products:       products,
		Users:          service.NewUserService(userRepo, tokens, log.Named("users")),
		Carts:          carts,
		Orders:         service.NewOrderService(orderRepo, productRepo, userRepo, carts, products, publisher, log.Named("orders")),
		Stats:          service.NewAdminService(userRepo, productRepo, orderRepo),
		Tokens:         tokens,
		Checks:         checks,
		Log:            log.Named("http"),
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxBodyBytes:   cfg.HTTP.MaxRequestBodySize,
		ServiceName:    cfg.Telemetry.ServiceName,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	g.Go(func() error {
		log.Info("API starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}
