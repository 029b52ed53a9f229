package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nbilal/scholarbridge/internal/config"
	"github.com/nbilal/scholarbridge/internal/pkg/helpers"
)

// GateCache caches sponsorship-gate lookups for donor/student pairs. The
// cache is best effort: a miss or an unreachable redis falls through to the
// database, and settlement overwrites the pair with the new value.
type GateCache interface {
	Get(ctx context.Context, donorID, studentID int64) (hasSponsorship bool, ok bool)
	Set(ctx context.Context, donorID, studentID int64, hasSponsorship bool)
}

// RedisGateCache implements GateCache on redis
type RedisGateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisGateCache connects to redis per config and returns the cache, or
// nil when redis is disabled.
func NewRedisGateCache(cfg *config.Config, logger zerolog.Logger) (*RedisGateCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisGateCache{
		client: client,
		ttl:    helpers.ParseDuration(cfg.Redis.TTL, 5*time.Minute),
		logger: logger,
	}, nil
}

func gateKey(donorID, studentID int64) string {
	return fmt.Sprintf("sponsorship-gate:%d:%d", donorID, studentID)
}

// Get returns the cached gate value for the pair; ok is false on miss.
func (c *RedisGateCache) Get(ctx context.Context, donorID, studentID int64) (bool, bool) {
	val, err := c.client.Get(ctx, gateKey(donorID, studentID)).Result()
	if err == redis.Nil {
		return false, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("Gate cache read failed")
		return false, false
	}
	return val == "1", true
}

// Set stores the gate value for the pair
func (c *RedisGateCache) Set(ctx context.Context, donorID, studentID int64, hasSponsorship bool) {
	val := "0"
	if hasSponsorship {
		val = "1"
	}
	if err := c.client.Set(ctx, gateKey(donorID, studentID), val, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Msg("Gate cache write failed")
	}
}

// Close releases the redis connection
func (c *RedisGateCache) Close() error {
	return c.client.Close()
}
