package helpdesk

import (
	"github.com/Philgatex/huashang-hais-app/internal/middleware"
	"github.com/Philgatex/huashang-hais-app/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	helpdesk := r.Group("/helpdesk")
	helpdesk.POST("/ask",
		middleware.RateLimitByUser(0.5, 3),
		middleware.RBACAuthorize(rbacService, rbac.ResourceHelpdesk, rbac.ActionAsk),
		handler.Ask,
	)
}
