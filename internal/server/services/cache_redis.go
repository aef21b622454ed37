package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/logging"
	"github.com/dmitrijs2005/plateledger/internal/server/metrics"
	"github.com/dmitrijs2005/plateledger/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	activityKeyPrefix     = "plateledger:activity"
	activityGenerationKey = activityKeyPrefix + ":gen"
)

// RedisActivityCache shares user activity pages between server replicas.
// Pages are keyed by generation; Purge bumps the generation so older pages
// become unreachable and expire on their own. Redis errors count as misses.
type RedisActivityCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  logging.Logger
}

func NewRedisActivityCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics, logger logging.Logger) *RedisActivityCache {
	return &RedisActivityCache{
		client:  client,
		ttl:     ttl,
		metrics: m,
		logger:  logger.With("module", "activity_cache"),
	}
}

func activityPageKey(gen uint64, page int) string {
	return fmt.Sprintf("%s:%d:%d", activityKeyPrefix, gen, page)
}

func (c *RedisActivityCache) Generation(ctx context.Context) uint64 {
	v, err := c.client.Get(ctx, activityGenerationKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn(ctx, "reading cache generation", "error", err)
		}
		return 0
	}
	gen, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.logger.Warn(ctx, "malformed cache generation", "value", v)
		return 0
	}
	return gen
}

func (c *RedisActivityCache) Get(ctx context.Context, page int) (models.Page[models.ObserverActivity], bool) {
	var v models.Page[models.ObserverActivity]

	b, err := c.client.Get(ctx, activityPageKey(c.Generation(ctx), page)).Bytes()
	if err == nil {
		err = json.Unmarshal(b, &v)
	}
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn(ctx, "reading cached page", "page", page, "error", err)
		}
		c.metrics.CacheMisses.Inc()
		return models.Page[models.ObserverActivity]{}, false
	}

	c.metrics.CacheHits.Inc()
	return v, true
}

// Add writes under gen. After a Purge the key is one nobody reads.
func (c *RedisActivityCache) Add(ctx context.Context, gen uint64, page int, v models.Page[models.ObserverActivity]) {
	b, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn(ctx, "encoding page", "page", page, "error", err)
		return
	}
	if err := c.client.Set(ctx, activityPageKey(gen, page), b, c.ttl).Err(); err != nil {
		c.logger.Warn(ctx, "caching page", "page", page, "error", err)
	}
}

func (c *RedisActivityCache) Purge(ctx context.Context) {
	if err := c.client.Incr(ctx, activityGenerationKey).Err(); err != nil {
		c.logger.Error(ctx, "purging activity cache", "error", err)
	}
}
