package app

import (
	"github.com/Philgatex/huashang-hais-app/internal/approval"
	"github.com/Philgatex/huashang-hais-app/internal/config"
	"github.com/Philgatex/huashang-hais-app/internal/employee"
	"github.com/Philgatex/huashang-hais-app/internal/helpdesk"
	"github.com/Philgatex/huashang-hais-app/internal/messaging/kafka"
	"github.com/Philgatex/huashang-hais-app/internal/middleware"
	"github.com/Philgatex/huashang-hais-app/internal/payroll"
	"github.com/Philgatex/huashang-hais-app/internal/payroll/rates"
	"github.com/Philgatex/huashang-hais-app/internal/rbac"
	"github.com/Philgatex/huashang-hais-app/internal/rbac/infra"
	"github.com/Philgatex/huashang-hais-app/internal/shared/clock"
	"github.com/Philgatex/huashang-hais-app/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	stores Stores,
	rdb *redis.Client,
	rateCfg rates.Config,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	counterRepo := counter.NewRepository(stores.GORM)
	employeeRepo := employee.NewRepository(stores.GORM)
	outboxRepo := kafka.NewOutboxRepository(stores.SQL)
	payrollRepo := payroll.NewRepository(stores.GORM)
	approvalRepo := approval.NewRepository(stores.GORM)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	perms, roles := rbac.DefaultPolicy()
	rbacService, err := rbac.NewService(enforcer, perms, roles, logger)
	if err != nil {
		return err
	}

	// --- Services ---
	employeeService := employee.NewService(stores.SQL, employeeRepo, counterRepo, rdb, logger)
	payrollService := payroll.NewService(
		stores.SQL, payrollRepo, employeeRepo, outboxRepo,
		rateCfg, clock.System(), cfg.PayrollWorkers, logger,
	)

	approvalService := approval.NewService(stores.SQL, approvalRepo, clock.System(), logger)

	var completer helpdesk.Completer
	if cfg.HelpdeskURL != "" {
		completer = helpdesk.NewHTTPCompleter(cfg.HelpdeskURL, cfg.HelpdeskAPIKey, cfg.HelpdeskTimeout)
	} else {
		logger.Warn("HELPDESK_COMPLETION_URL not set, helpdesk answers are disabled")
	}
	helpdeskService := helpdesk.NewService(completer, logger)

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService, logger)
	payrollHandler := payroll.NewHandler(payrollService, logger)
	helpdeskHandler := helpdesk.NewHandler(helpdeskService, logger)
	approvalHandler := approval.NewHandler(approvalService, logger)

	// --- Routes Registration ---
	router.Use(
		middleware.RequestID(),
		middleware.ContextLogger(logger),
		middleware.RateLimitByIP(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst),
	)

	router.NoRoute(middleware.NotFound())

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret), middleware.ExtractUserID())
	{
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		payroll.RegisterRoutes(api, payrollHandler, rbacService, rdb, logger)
		helpdesk.RegisterRoutes(api, helpdeskHandler, rbacService)
		approval.RegisterRoutes(api, approvalHandler, rbacService)
	}

	return nil
}
