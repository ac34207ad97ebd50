package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wfo-tracker/attendance-backend-go/internal/config"
	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
)

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}

	return client, nil
}

// StatsKey is the cache key of one user's month under a generation.
func StatsKey(userID, generation int64, year, month int) string {
	return fmt.Sprintf("stats:%d:%d:%d:%d", userID, generation, year, month)
}

// GenerationKey holds the counter advanced by every invalidation of a user.
func GenerationKey(userID int64) string {
	return fmt.Sprintf("stats:gen:%d", userID)
}

func userPattern(userID int64) string {
	return fmt.Sprintf("stats:%d:*", userID)
}

type redisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStatsCache stores monthly stats as JSON values expiring after ttl.
// Generation counters carry no TTL; losing one could resurrect entries of an old generation.
func NewRedisStatsCache(client *redis.Client, ttl time.Duration) attendance.StatsCache {
	return &redisStatsCache{client: client, ttl: ttl}
}

func (c *redisStatsCache) Generation(ctx context.Context, userID int64) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read stats generation: %w", err)
	}
	return gen, nil
}

func (c *redisStatsCache) Get(ctx context.Context, userID, generation int64, year, month int) (*attendance.MonthlyStats, error) {
	data, err := c.client.Get(ctx, StatsKey(userID, generation, year, month)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stats cache: %w", err)
	}

	var stats attendance.MonthlyStats
	if err := json.Unmarshal(data, &stats); err != nil {
		// A value we cannot decode is treated as a miss and overwritten later.
		slog.WarnContext(ctx, "Discarding undecodable stats cache entry", "user_id", userID, "error", err)
		return nil, nil
	}
	stats.UserID = userID

	return &stats, nil
}

func (c *redisStatsCache) Set(ctx context.Context, userID, generation int64, stats attendance.MonthlyStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}

	key := StatsKey(userID, generation, stats.Year, stats.Month)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write stats cache: %w", err)
	}

	return nil
}

// InvalidateMonth advances the user's generation and drops the month's entry of the previous one.
// Other months of the previous generation become unreachable and expire with their TTL.
func (c *redisStatsCache) InvalidateMonth(ctx context.Context, userID int64, year, month int) error {
	gen, err := c.client.Incr(ctx, GenerationKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to advance stats generation: %w", err)
	}

	if err := c.client.Del(ctx, StatsKey(userID, gen-1, year, month)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}

// InvalidateUser advances the user's generation and deletes every cached month.
func (c *redisStatsCache) InvalidateUser(ctx context.Context, userID int64) error {
	if err := c.client.Incr(ctx, GenerationKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to advance stats generation: %w", err)
	}

	iter := c.client.Scan(ctx, 0, userPattern(userID), 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan stats cache: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}
