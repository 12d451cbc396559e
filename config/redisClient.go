package config

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a pinged client, or nil when REDIS_ADDRESS is unset.
func ConnectRedis(cfg *Config) (*redis.Client, error) {
	if cfg.RedisAddress == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Infof("Connected to Redis at %s", cfg.RedisAddress)
	return client, nil
}
