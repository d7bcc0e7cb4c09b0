package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is the shared cache layer. Writes are idempotent per key
// (SETNX), so two workers racing on the same pair cannot overwrite each
// other's text. Errors degrade to a miss: the pipeline never fails on
// the cache.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func redisKey(userID, shopID int) string {
	return fmt.Sprintf("msg:%s", Key(userID, shopID))
}

func (c *Redis) Get(ctx context.Context, userID, shopID int) (string, bool) {
	val, err := c.client.Get(ctx, redisKey(userID, shopID)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.logger.Warn("redis cache get failed", "error", err)
		return "", false
	}
	return val, true
}

func (c *Redis) Set(ctx context.Context, userID, shopID int, text string) {
	if text == "" {
		return
	}
	if err := c.client.SetNX(ctx, redisKey(userID, shopID), text, c.ttl).Err(); err != nil {
		c.logger.Warn("redis cache set failed", "error", err)
	}
}

func (c *Redis) Stats() map[string]any {
	return map[string]any{"backend": "redis", "ttl": c.ttl.String()}
}

// Layered reads through the worker-local memory cache first and falls
// back to the shared layer, backfilling memory on a shared hit. With a
// nil shared layer it behaves exactly like the memory cache, which is
// how workers run when Redis is not configured.
type Layered struct {
	local  *Memory
	shared Store
}

func NewLayered(local *Memory, shared Store) *Layered {
	return &Layered{local: local, shared: shared}
}

func (c *Layered) Get(ctx context.Context, userID, shopID int) (string, bool) {
	if text, ok := c.local.Get(ctx, userID, shopID); ok {
		return text, true
	}
	if c.shared == nil {
		return "", false
	}
	text, ok := c.shared.Get(ctx, userID, shopID)
	if !ok {
		return "", false
	}
	c.local.Set(ctx, userID, shopID, text)
	return text, true
}

func (c *Layered) Set(ctx context.Context, userID, shopID int, text string) {
	c.local.Set(ctx, userID, shopID, text)
	if c.shared != nil {
		c.shared.Set(ctx, userID, shopID, text)
	}
}

func (c *Layered) Stats() map[string]any {
	stats := c.local.Stats()
	if c.shared != nil {
		stats["shared"] = c.shared.Stats()
	}
	return stats
}
