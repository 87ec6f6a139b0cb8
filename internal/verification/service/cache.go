package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	id "vouch/pkg/domain"
)

// RedisStatusCache caches Status results for a short TTL so polling clients
// do not hammer the submission store. Cache failures are logged and treated
// as misses.
type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStatusCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStatusCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RedisStatusCache{client: client, ttl: ttl, logger: logger}
}

func statusKey(userID id.UserID) string {
	return fmt.Sprintf("verification:status:%s", userID)
}

func (c *RedisStatusCache) Get(ctx context.Context, userID id.UserID) (*StatusResult, bool) {
	raw, err := c.client.Get(ctx, statusKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("status cache read", "error", err, "user_id", userID)
		}
		return nil, false
	}

	var result StatusResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Warn("status cache decode", "error", err, "user_id", userID)
		return nil, false
	}
	return &result, true
}

func (c *RedisStatusCache) Set(ctx context.Context, userID id.UserID, result StatusResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("status cache encode", "error", err, "user_id", userID)
		return
	}
	if err := c.client.Set(ctx, statusKey(userID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("status cache write", "error", err, "user_id", userID)
	}
}

func (c *RedisStatusCache) Invalidate(ctx context.Context, userID id.UserID) {
	if err := c.client.Del(ctx, statusKey(userID)).Err(); err != nil {
		c.logger.Warn("status cache invalidate", "error", err, "user_id", userID)
	}
}
