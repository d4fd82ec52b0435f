package bootstrap

import (
	"context"

	"wasteops/internal/infra/guestcache"
	"wasteops/internal/pkg/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RedisModule = fx.Module("redis",
	fx.Provide(
		NewRedis,
		NewGuestCache,
	),
)

func NewRedis(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	rdb, cleanup, err := guestcache.Connect(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return rdb, nil
}

func NewGuestCache(rdb *redis.Client, cfg config.Config) *guestcache.Store {
	return guestcache.New(rdb, cfg.Guest.IdentityTTL)
}
