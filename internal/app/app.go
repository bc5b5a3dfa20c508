package app

import (
	"github.com/Philgatex/huashang-hais-app/internal/config"
	"github.com/Philgatex/huashang-hais-app/internal/payroll/rates"
	"github.com/Philgatex/huashang-hais-app/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects infrastructure, migrates and registers every route on
// router. The returned func releases the connections.
func BuildApp(router *gin.Engine, cfg config.Config) (func(), error) {
	logger := zap.L().Named("app")

	rateCfg, err := rates.Load(cfg.RatesFile)
	if err != nil {
		return nil, err
	}
	logger.Info("payroll rates loaded", zap.String("version", rateCfg.Version))

	stores, err := OpenStores(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(stores.GORM); err != nil {
		stores.Close()
		return nil, err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.DBRetries)
	if err != nil {
		stores.Close()
		return nil, err
	}
	logger.Info("redis connection established", zap.String("addr", cfg.RedisAddr))

	if err := registerModules(router, cfg, stores, redisClient, rateCfg, logger); err != nil {
		redisClient.Close()
		stores.Close()
		return nil, err
	}

	return func() {
		_ = redisClient.Close()
		_ = stores.Close()
	}, nil
}
