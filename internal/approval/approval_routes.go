package approval

import (
	"github.com/Philgatex/huashang-hais-app/internal/middleware"
	"github.com/Philgatex/huashang-hais-app/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the approval center on an authenticated group.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	read := middleware.RBACAuthorize(rbacService, rbac.ResourceApproval, rbac.ActionRead)
	decide := middleware.RBACAuthorize(rbacService, rbac.ResourceApproval, rbac.ActionDecide)

	approvals := r.Group("/approvals")
	{
		approvals.GET("", read, handler.ListPending)
		approvals.GET("/history", read, handler.ListHistory)
		approvals.GET("/:id", read, handler.GetByID)

		approvals.POST("",
			middleware.RateLimitByUser(0.5, 3),
			middleware.RBACAuthorize(rbacService, rbac.ResourceApproval, rbac.ActionSubmit),
			handler.Submit,
		)
		approvals.POST("/:id/approve", middleware.RateLimitByUser(1, 5), decide, handler.Approve)
		approvals.POST("/:id/reject", middleware.RateLimitByUser(1, 5), decide, handler.Reject)
	}
}
