package bootstrap

import (
	"time"

	"wasteops/internal/pkg/config"
	"wasteops/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
	),
)

func NewJWTService(cfg config.Config) *jwt.Service {
	accessDuration, err := time.ParseDuration(cfg.JWT.Duration)
	if err != nil {
		panic("invalid JWT_DURATION: " + err.Error())
	}
	refreshDuration, err := time.ParseDuration(cfg.JWT.RefreshDuration)
	if err != nil {
		panic("invalid JWT_REFRESH_DURATION: " + err.Error())
	}

	return jwt.NewService(cfg.JWT.Secret, accessDuration, refreshDuration)
}
