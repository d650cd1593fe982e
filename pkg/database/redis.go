package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/datawise-ai/advisor-engine/pkg/config"
)

// NewRedisClient creates a Redis client for the session registry.
// Returns nil if Redis is not configured (host is empty); callers treat a nil
// client as "registry disabled".
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.ResolveHostForDocker(cfg.Host), cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
