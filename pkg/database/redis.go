package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"docqa-go/pkg/log"
)

// NewRedis 建立 Redis 连接并做一次 Ping 校验，返回客户端。
// 仅在启用 Redis 会话后端时调用。
func NewRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	log.Info("Redis client connected successfully")
	return rdb, nil
}
