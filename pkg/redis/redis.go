package redis

import (
	"context"
	"fmt"
	"time"

	"art-market/config"

	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// InitRedis connects the shared client. Callers treat redis as an optional
// accelerator: every helper in this package degrades to an error the caller
// may ignore, never to a panic.
func InitRedis(cfg config.RedisConfig) error {
	client = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		client = nil
		return fmt.Errorf("connect redis: %w", err)
	}
	return nil
}

// GetClient returns the shared client, nil before InitRedis.
func GetClient() *redis.Client {
	return client
}

// Close closes the shared client.
func Close() error {
	if client != nil {
		return client.Close()
	}
	return nil
}

// HealthCheck pings redis.
func HealthCheck() error {
	if client == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
