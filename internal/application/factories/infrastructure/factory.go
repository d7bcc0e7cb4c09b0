// Package infrastructure builds and memoizes the external handles one
// pipeline worker needs. Each worker owns its own Factory: handles are
// lazily constructed on first use, construction errors propagate to the
// caller and are never cached, so the next call simply retries.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pgxpool "github.com/jackc/pgx/v5/pgxpool"
	go_redis "github.com/redis/go-redis/v9"

	"github.com/AlphaCodeSWE/NearYou/internal/config"
	"github.com/AlphaCodeSWE/NearYou/internal/infrastructure/generator"
	"github.com/AlphaCodeSWE/NearYou/internal/infrastructure/postgres"
	"github.com/AlphaCodeSWE/NearYou/internal/infrastructure/redis"
)

type Factory struct {
	cfg    *config.Config
	logger *slog.Logger

	spatialPool   *pgxpool.Pool
	analyticsPool *pgxpool.Pool
	redisCli      *go_redis.Client
	genClient     *generator.Client
}

func NewFactory(cfg *config.Config, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Spatial returns the pool for the PostGIS shops database.
func (f *Factory) Spatial(ctx context.Context) (*pgxpool.Pool, error) {
	if f.spatialPool != nil {
		return f.spatialPool, nil
	}

	pool, err := f.dial(ctx, "spatial", postgres.Config{
		Host:     f.cfg.Spatial.Host,
		Port:     f.cfg.Spatial.Port,
		User:     f.cfg.Spatial.User,
		Password: f.cfg.Spatial.Password,
		DBName:   f.cfg.Spatial.DBName,
	})
	if err != nil {
		return nil, err
	}

	f.spatialPool = pool
	return pool, nil
}

// Analytics returns the pool for the users/events/visits database.
func (f *Factory) Analytics(ctx context.Context) (*pgxpool.Pool, error) {
	if f.analyticsPool != nil {
		return f.analyticsPool, nil
	}

	pool, err := f.dial(ctx, "analytics", postgres.Config{
		Host:     f.cfg.Analytics.Host,
		Port:     f.cfg.Analytics.Port,
		User:     f.cfg.Analytics.User,
		Password: f.cfg.Analytics.Password,
		DBName:   f.cfg.Analytics.DBName,
	})
	if err != nil {
		return nil, err
	}

	f.analyticsPool = pool
	return pool, nil
}

func (f *Factory) dial(ctx context.Context, name string, cfg postgres.Config) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connection up to 5 times
	for i := 0; i < 5; i++ {
		pool, err = postgres.NewClient(ctx, cfg)
		if err == nil {
			break
		}
		f.logger.Warn("failed to connect to postgres, retrying in 2s",
			"database", name, "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to init %s postgres after retries: %w", name, err)
	}

	return pool, nil
}

func (f *Factory) Redis(ctx context.Context) (*go_redis.Client, error) {
	if f.redisCli != nil {
		return f.redisCli, nil
	}

	client, err := redis.NewClient(ctx, redis.Config{
		Addr:     f.cfg.Redis.Addr,
		Password: f.cfg.Redis.Password,
		DB:       f.cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	f.redisCli = client
	return client, nil
}

// Generator returns the message-generator HTTP client.
func (f *Factory) Generator() *generator.Client {
	if f.genClient != nil {
		return f.genClient
	}

	f.genClient = generator.NewClient(
		f.cfg.Generator.URL,
		f.cfg.Generator.Timeout,
		f.cfg.Generator.RequestsPerMinute,
		f.logger,
	)
	return f.genClient
}

func (f *Factory) Close() {
	if f.spatialPool != nil {
		f.spatialPool.Close()
	}
	if f.analyticsPool != nil {
		f.analyticsPool.Close()
	}
	if f.redisCli != nil {
		f.redisCli.Close()
	}
}
