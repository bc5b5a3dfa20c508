package payroll

import (
	"github.com/Philgatex/huashang-hais-app/internal/middleware"
	"github.com/Philgatex/huashang-hais-app/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RegisterRoutes mounts payroll on an authenticated group. Without redis the
// run endpoint works but Idempotency-Key is ignored.
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	read := middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionRead)
	readOwn := middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionReadOwn)

	runChain := []gin.HandlerFunc{
		middleware.RateLimitByUser(0.2, 2),
		middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, rbac.ActionRun),
	}
	if rdb != nil {
		runChain = append(runChain, middleware.Idempotency(rdb, logger))
	}
	runChain = append(runChain, handler.Run)

	payroll := r.Group("/payroll")
	{
		payroll.POST("/runs", runChain...)
		payroll.GET("/runs", read, handler.ListRuns)
		payroll.GET("/runs/:id", read, handler.GetRun)

		payroll.GET("/payslips", read, handler.ListPayslips)
		payroll.GET("/payslips/mine", readOwn, handler.ListMyPayslips)
		payroll.GET("/payslips/mine/:id/pdf", middleware.RateLimitByUser(1, 5), readOwn, handler.DownloadMyPayslipPDF)
		payroll.GET("/payslips/export", middleware.RateLimitByUser(0.5, 2), read, handler.ExportPayslips)
		payroll.GET("/payslips/:id", read, handler.GetPayslip)
		payroll.GET("/payslips/:id/pdf", middleware.RateLimitByUser(1, 5), read, handler.DownloadPayslipPDF)

		payroll.GET("/rates", read, handler.GetRates)
	}
}
