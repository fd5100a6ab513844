// Package health builds the readiness checks exposed on /readyz.
package health

import (
	"context"
	"fmt"
	"time"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New registers a required database check and, when a client is given, a
// non-fatal check for the Redis catalog mirror.
func New(version string, db Pinger, mirror redis.Cmdable) (*healthgo.Health, error) {
	checks := []healthgo.Config{
		{
			Name:      "postgres",
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check: func(ctx context.Context) error {
				if db == nil {
					return fmt.Errorf("database not configured")
				}
				return db.Ping(ctx)
			},
		},
	}
	if mirror != nil {
		checks = append(checks, healthgo.Config{
			Name:      "redis-mirror",
			Timeout:   time.Second,
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				return mirror.Ping(ctx).Err()
			},
		})
	}

	h, err := healthgo.New(
		healthgo.WithComponent(healthgo.Component{
			Name:    "storefront",
			Version: version,
		}),
		healthgo.WithSystemInfo(),
		healthgo.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("create health instance: %w", err)
	}
	return h, nil
}
