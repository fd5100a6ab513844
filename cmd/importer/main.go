package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	productrepo "storefront/internal/repository/product"
)

type options struct {
	filePath string
	publish  bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "importer",
		Short: "Import products from a CSV file",
		Long: `Import products from a CSV file into Postgres.

Columns: id,name,slug,description,price,promoPrice,stock,categoryId,images.
With --publish every product is also written to the Redis catalog mirror.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.filePath, "file", "", "path to the product CSV file")
	cmd.Flags().BoolVar(&opts.publish, "publish", false, "also publish products to the Redis mirror (REDIS_URL)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func run(ctx context.Context, opts *options, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := log.New(cmd.ErrOrStderr(), "[importer] ", log.LstdFlags|log.LUTC)
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBOptions())
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	writers := []productrepo.Writer{productrepo.NewPostgres(pool, logger)}
	if opts.publish {
		if cfg.RedisURL == "" {
			return fmt.Errorf("--publish requires REDIS_URL")
		}
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(redisOpts)
		defer client.Close()
		writers = append(writers, productrepo.NewRedisMirror(client, cfg.MirrorTTL, logger))
	}

	f, err := os.Open(opts.filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	start := time.Now()
	count, err := importer.NewCSVImporter(f, writers...).Run(ctx)
	if err != nil {
		return fmt.Errorf("import failed after %d products: %w", count, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
	return nil
}
