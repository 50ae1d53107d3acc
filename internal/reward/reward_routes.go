package reward

import (
	"hr-backoffice/internal/middleware"
	"hr-backoffice/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	rewards := r.Group("/rewards")
	rewards.Use(middleware.AuthMiddleware())
	{
		rewards.GET("", middleware.RBACAuthorize(rbacService, "reward", "read"), handler.GetAll)
		rewards.GET("/:id", middleware.RBACAuthorize(rbacService, "reward", "read"), handler.GetByID)
		rewards.GET("/employee/:employeeId", middleware.RBACAuthorize(rbacService, "reward", "read"), handler.GetByEmployee)
		rewards.POST("", middleware.RBACAuthorize(rbacService, "reward", "create"), handler.Create)
		rewards.POST("/:id/approve",
			middleware.RBACAuthorize(rbacService, "reward", "approve"),
			middleware.RateLimitByUser(1, 5),
			middleware.Idempotency(rdb),
			handler.Approve)
		rewards.POST("/:id/reject",
			middleware.RBACAuthorize(rbacService, "reward", "approve"),
			middleware.RateLimitByUser(1, 5),
			middleware.Idempotency(rdb),
			handler.Reject)
	}
}
