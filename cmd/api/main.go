package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/health"
	"storefront/internal/httpserver"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	"storefront/internal/service/checkout"
	"storefront/internal/service/delivery"
	productsvc "storefront/internal/service/product"
	"storefront/internal/service/resolver"
	"storefront/internal/service/session"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBOptions())
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	sources := []resolver.Source{{Name: "postgres", Catalog: productRepo, Timeout: cfg.SourceTimeout}}
	catalogs := []productrepo.Catalog{productRepo}

	var mirrorClient redis.Cmdable
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatalf("parse REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		mirrorClient = client
		mirror := productrepo.NewRedisMirror(client, cfg.MirrorTTL, logger)
		sources = append(sources, resolver.Source{Name: "redis", Catalog: mirror, Timeout: cfg.SourceTimeout})
		catalogs = append(catalogs, mirror)
		logger.Printf("catalog mirror enabled")
	}
	products := resolver.New(logger, sources...)

	var (
		carts  cartrepo.Repository
		tokens tokenrepo.Repository
	)
	switch cfg.CartBackend {
	case config.CartBackendPostgres:
		carts = cartrepo.NewPostgres(dbpool)
		tokens = tokenrepo.NewPostgres(dbpool)
	default:
		carts = cartrepo.NewMemory()
		tokens = tokenrepo.NewMemory()
	}
	logger.Printf("cart backend: %s", cfg.CartBackend)

	fees := delivery.Policy{}
	store := cartsvc.NewStore(carts, products, logger)
	enricher := cartsvc.NewEnricher(products, cfg.EnrichConcurrency, cfg.EnrichTimeout, logger)
	orders := orderrepo.NewPostgres(dbpool, logger)

	ready, err := health.New(version, dbpool, mirrorClient)
	if err != nil {
		logger.Fatalf("init health checks: %v", err)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Carts:        cartsvc.NewService(store, enricher, fees),
		Checkout:     checkout.New(store, enricher, fees, orders, logger),
		Products:     productsvc.New(products, logger, catalogs...),
		Categories:   categorysvc.New(categoryrepo.NewPostgres(dbpool), productRepo),
		Sessions:     session.New(tokens, cfg.CartTokenTTL),
		Orders:       orders,
		Delivery:     fees,
		Ready:        ready.Handler(),
		CORSOrigins:  cfg.CORSOrigins,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
