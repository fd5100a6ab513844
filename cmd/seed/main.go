package main

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"storefront/internal/config"
	"storefront/internal/db"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/seed"
)

func main() {
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBOptions())
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	writers := []productrepo.Writer{productrepo.NewPostgres(pool, logger)}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatalf("parse REDIS_URL: %v", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		writers = append(writers, productrepo.NewRedisMirror(client, cfg.MirrorTTL, logger))
	}

	catalog, err := seed.Default()
	if err != nil {
		logger.Fatalf("load catalog: %v", err)
	}
	if err := seed.Apply(ctx, logger, catalog, categoryrepo.NewPostgres(pool), writers...); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
