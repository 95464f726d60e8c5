package db

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/jacl-coder/SquadStats-Bot/config"
)

// NewRedis 创建Redis连接并测试连通性
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *zap.SugaredLogger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 测试连接
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.Ping(pingCtx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	log.Infow("成功连接到Redis服务器", "addr", cfg.GetRedisAddr(), "db", cfg.DB)
	return client, nil
}

// CloseRedis 关闭Redis连接
func CloseRedis(client *redis.Client, log *zap.SugaredLogger) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		log.Warnw("关闭Redis连接时发生错误", "error", err)
		return
	}
	log.Info("Redis连接已关闭")
}
