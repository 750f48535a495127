package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "benefits-assistant/internal/common/errors"
	"benefits-assistant/internal/models"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "benefits:legiscan:"

// RedisLegislationCache shares entries across server instances. Redis
// failures are logged and behave as misses.
type RedisLegislationCache struct {
	client redis.Cmdable
	ttl    time.Duration
	logger Logger
}

func NewRedisLegislationCache(client redis.Cmdable, ttl time.Duration, log Logger) *RedisLegislationCache {
	return &RedisLegislationCache{client: client, ttl: ttl, logger: log}
}

func (c *RedisLegislationCache) Get(ctx context.Context, key string) ([]models.Bill, bool) {
	val, err := c.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.warn("get", key, err)
		return nil, false
	}

	var bills []models.Bill
	if err := json.Unmarshal([]byte(val), &bills); err != nil {
		c.warn("decode", key, err)
		return nil, false
	}
	if bills == nil {
		bills = []models.Bill{}
	}
	return bills, true
}

func (c *RedisLegislationCache) Put(ctx context.Context, key string, bills []models.Bill) {
	if bills == nil {
		bills = []models.Bill{}
	}
	data, err := json.Marshal(bills)
	if err != nil {
		c.warn("encode", key, err)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		c.warn("set", key, err)
	}
}

func (c *RedisLegislationCache) warn(op, key string, err error) {
	stdErr := apperrors.NewCacheOperationError(op, err)
	c.logger.Warn("legislation cache operation failed", map[string]interface{}{
		"operation": op,
		"key":       key,
		"errorCode": string(stdErr.Code),
		"error":     err.Error(),
	})
}
