package ratelimit

import (
	"github.com/careercraft/careercraft/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}

func newGuard(client *redis.Client, log *zap.Logger) Guard {
	if client == nil {
		log.Warn("redis not configured, tier changes are serialized per process only")
		return NewLocalGuard()
	}
	return NewRedisGuard(NewLocker(client), "careercraft:tierchange:")
}

var Module = fx.Module("ratelimit",
	fx.Provide(newRedisClient),
	fx.Provide(newGuard),
)
