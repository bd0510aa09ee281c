package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oggyb/spark-core/internal/config"
)

// LikeCountTTL bounds how stale a cached "liked you" counter can get.
const LikeCountTTL = time.Hour

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	return &RedisCache{Client: redis.NewClient(opts)}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.Client.Close()
}

// KeyForLikeCount generates Redis key for a user's "liked you" counter
func (c *RedisCache) KeyForLikeCount(userID uint64) string {
	return fmt.Sprintf("likes:count:%d", userID)
}

// SetLikeCount stores the counter loaded from the DB with a fresh TTL.
func (c *RedisCache) SetLikeCount(ctx context.Context, userID uint64, count int64) error {
	return c.Client.Set(ctx, c.KeyForLikeCount(userID), count, LikeCountTTL).Err()
}

// GetLikeCount returns the cached counter. ok is false on a cache miss.
func (c *RedisCache) GetLikeCount(ctx context.Context, userID uint64) (int64, bool, error) {
	key := c.KeyForLikeCount(userID)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// corrupt value: drop it so the next read repopulates from the DB
		_ = c.Client.Del(ctx, key).Err()
		return 0, false, nil
	}
	// refresh TTL since this user is active
	_ = c.Client.Expire(ctx, key, LikeCountTTL).Err()
	return n, true, nil
}

// InvalidateLikeCount drops the counter; the next read recomputes it.
// Swipes invalidate rather than Incr/Decr because a like→pass→like sequence
// cannot be tracked correctly with blind deltas.
func (c *RedisCache) InvalidateLikeCount(ctx context.Context, userID uint64) error {
	return c.Client.Del(ctx, c.KeyForLikeCount(userID)).Err()
}

// Publish sends payload to a pub/sub channel.
func (c *RedisCache) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.Client.Publish(ctx, channel, payload).Err()
}

// Subscribe opens a pub/sub subscription and waits for the confirmation so
// that no message published after Subscribe returns is missed.
func (c *RedisCache) Subscribe(ctx context.Context, channel string) (*redis.PubSub, error) {
	ps := c.Client.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	return ps, nil
}
