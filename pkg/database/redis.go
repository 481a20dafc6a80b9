package database

import (
	"context"
	"fmt"
	"studylife-go/internal/config"
	"studylife-go/pkg/log"

	"github.com/go-redis/redis/v8"
)

// OpenRedis 初始化 Redis 客户端连接。Addr 为空时返回 nil，调用方按未启用处理。
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		log.Info("Redis 未配置，会话历史与分发锁将被禁用")
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis client connected successfully")
	return rdb, nil
}
