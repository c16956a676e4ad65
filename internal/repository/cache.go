package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kursus-backend/internal/domain"
	"kursus-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ParseRedisURL validates a Redis connection URL.
func ParseRedisURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// NewRedisClient dials and pings Redis.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := ParseRedisURL(url)
	if err != nil {
		return nil, err
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	return client, nil
}

type redisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) domain.CatalogCache {
	return &redisCatalogCache{client: client, ttl: ttl}
}

func modulesKey(courseID uint) string {
	return fmt.Sprintf("kursus:course:%d:modules", courseID)
}

func (c *redisCatalogCache) GetModules(ctx context.Context, courseID uint) ([]domain.ModuleSummary, bool) {
	raw, err := c.client.Get(ctx, modulesKey(courseID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("catalog cache read failed", zap.Uint("course_id", courseID), zap.Error(err))
		}
		return nil, false
	}

	var modules []domain.ModuleSummary
	if err := json.Unmarshal(raw, &modules); err != nil {
		return nil, false
	}
	return modules, true
}

func (c *redisCatalogCache) SetModules(ctx context.Context, courseID uint, modules []domain.ModuleSummary) {
	raw, err := json.Marshal(modules)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, modulesKey(courseID), raw, c.ttl).Err(); err != nil {
		logger.Log.Warn("catalog cache write failed", zap.Uint("course_id", courseID), zap.Error(err))
	}
}

func (c *redisCatalogCache) Invalidate(ctx context.Context, courseID uint) {
	if err := c.client.Del(ctx, modulesKey(courseID)).Err(); err != nil {
		logger.Log.Warn("catalog cache invalidate failed", zap.Uint("course_id", courseID), zap.Error(err))
	}
}
