package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

const keyPrefix = "analysis:"

// Cache stores finished analyses keyed by content hash so re-uploads of
// the same file skip the pipeline.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{client: client, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) Get(ctx context.Context, cacheKey string) (*domain.AnalysisResult, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+cacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached analysis: %w", err)
	}
	return &result, true, nil
}

func (c *Cache) Set(ctx context.Context, cacheKey string, result *domain.AnalysisResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+cacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *Cache) ExtendTTL(ctx context.Context, cacheKey string) error {
	if err := c.client.Expire(ctx, keyPrefix+cacheKey, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis expire: %w", err)
	}
	return nil
}
