package utils

import (
	"github.com/redis/go-redis/v9"

	"geo-signals/internal/config"
	"geo-signals/internal/logger"
)

// OpenRedis：按配置打开 Redis 客户端；地址为空时返回 nil
func OpenRedis(c config.Redis) *redis.Client {
	if c.Host == "" || c.Port == "" {
		return nil
	}
	logger.L().Debug("redis_open", "addr", c.Addr(), "db", c.DB)
	return redis.NewClient(&redis.Options{Addr: c.Addr(), Password: c.Pass, DB: c.DB})
}
