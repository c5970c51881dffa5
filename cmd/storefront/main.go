package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/fjod/food_order/internal/cache"
	"github.com/fjod/food_order/internal/catalog"
	"github.com/fjod/food_order/internal/circuitbreaker"
	"github.com/fjod/food_order/internal/config"
	"github.com/fjod/food_order/internal/consumer"
	h "github.com/fjod/food_order/internal/http"
	"github.com/fjod/food_order/internal/logger"
	"github.com/fjod/food_order/internal/pricing"
	"github.com/fjod/food_order/internal/publisher"
	"github.com/fjod/food_order/internal/repository"
	"github.com/fjod/food_order/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer lg.Sync()
	zap.ReplaceGlobals(lg)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Orders, carts, discounts and the outbox live in Postgres
	creds := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := repository.NewRepository(creds)
	if err != nil {
		lg.Fatal("failed to connect to database", zap.Error(err))
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		lg.Fatal("failed to run migrations", zap.Error(err))
	}
	lg.Info("database migrations completed")

	// Catalog lives in SQLite
	catalogRepo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		lg.Fatal("failed to open catalog", zap.String("path", cfg.CatalogDBPath), zap.Error(err))
	}
	defer catalogRepo.Close()

	if err := catalogRepo.RunMigrations(cfg.CatalogMigrationsPath); err != nil {
		lg.Fatal("failed to run catalog migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		lg.Fatal("redis connection failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	lg.Info("redis ping succeeded")

	engine := pricing.NewEngine(catalogRepo, pricing.Policy{
		MinorUnitPlaces: cfg.MinorUnitPlaces,
		MaxQuantity:     cfg.MaxLineQuantity,
	})

	cartCache := cache.NewRedisCache(redisClient, cfg.CartCacheTTL)
	carts := service.NewCartService(repo, cartCache, engine, lg)
	checkout := service.NewCheckoutService(repo, repo, carts, catalogRepo, engine, cfg.ShippingFeeAmount(), lg)
	orders := service.NewOrderService(repo, lg)
	catalogSvc := service.NewCatalogService(catalogRepo, lg)
	discounts := service.NewDiscountService(repo, lg)
	pos := service.NewPOSService(repo, catalogRepo, engine, lg)

	// Outbox relay and cart cache eviction
	var wg sync.WaitGroup
	poller := publisher.NewOutboxPoller(repo, publisher.Options{
		Brokers:    cfg.Brokers(),
		Topic:      cfg.OrderEventsTopic,
		PollPeriod: cfg.OutboxPollPeriod,
		Breaker: circuitbreaker.Settings{
			Name:             "kafka-order-events",
			FailureThreshold: cfg.BreakerFailureThreshold,
			OpenTimeout:      cfg.BreakerOpenTimeout,
		},
	}, lg)
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(pollerCtx)
	}()

	invalidator := consumer.NewCartInvalidator(cartCache, cfg.OrderEventsTopic, cfg.CartCacheGroupID, lg, cfg.Brokers()...)
	wg.Add(1)
	go func() {
		defer wg.Done()
		invalidator.Run(pollerCtx)
	}()

	router := h.NewRouter(h.Handlers{
		Cart:      h.NewCartHandler(carts, cfg.RequestTimeout),
		Checkout:  h.NewCheckoutHandler(checkout, cfg.RequestTimeout),
		Orders:    h.NewOrdersHandler(orders, cfg.RequestTimeout),
		Products:  h.NewProductHandler(catalogSvc, cfg.RequestTimeout),
		Discounts: h.NewDiscountHandler(discounts, cfg.RequestTimeout),
		POS:       h.NewPOSHandler(pos, cfg.RequestTimeout),
	}, lg, cfg.RequestTimeout, cfg.MaxBodyBytes)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}

	pollerCancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		lg.Info("kafka workers stopped cleanly")
	case <-ctx.Done():
		lg.Warn("kafka workers shutdown timed out")
	}
	if err := poller.Close(); err != nil {
		lg.Warn("failed to close kafka writer", zap.Error(err))
	}
	if err := invalidator.Close(); err != nil {
		lg.Warn("failed to close kafka reader", zap.Error(err))
	}

	lg.Info("server exited")
}
