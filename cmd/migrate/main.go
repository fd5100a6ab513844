package main

import (
	"context"
	"flag"
	"log"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/migrate"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	flag.Parse()

	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)
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

	if *down > 0 {
		if err := migrate.Rollback(ctx, pool, *down); err != nil {
			logger.Fatalf("rollback migrations: %v", err)
		}
	} else if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	version, dirty, err := migrate.Version(ctx, pool)
	if err != nil {
		logger.Fatalf("read version: %v", err)
	}
	logger.Printf("migrations done version=%d dirty=%t", version, dirty)
}
