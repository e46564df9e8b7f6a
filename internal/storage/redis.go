package storage

import (
	"fmt"

	"github.com/go-redis/redis"

	"debate_arena/pkg/config"
)

// NewRedisClient 建立 redis 連線並先 ping 一次
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
