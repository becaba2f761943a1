package app

import (
	"context"
	"fmt"

	"ussd-bridge/internal/config"
	"ussd-bridge/internal/kv"
	"ussd-bridge/internal/logger"
	"ussd-bridge/internal/redis"
)

type Infra struct {
	Backend kv.Backend
}

func setupInfra(_ context.Context, cfg config.Config) (*Infra, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory session store; sessions are lost on restart and not shared between instances", nil)

		return &Infra{
			Backend: kv.NewMemory(),
		}, nil

	case config.BackendRedis:
		redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}

		logger.Info("redis ready", map[string]any{
			"addr": cfg.RedisAddr,
			"db":   cfg.RedisDB,
		})

		return &Infra{
			Backend: kv.NewRedis(redisClient.Client),
		}, nil
	}

	return nil, fmt.Errorf("app: unknown store backend %q", cfg.StoreBackend)
}
