package fine

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
	fines := r.Group("/fines")
	fines.Use(middleware.AuthMiddleware())
	{
		fines.GET("", middleware.RBACAuthorize(rbacService, "fine", "read"), handler.GetAll)
		fines.GET("/:id", middleware.RBACAuthorize(rbacService, "fine", "read"), handler.GetByID)
		fines.POST("", middleware.RBACAuthorize(rbacService, "fine", "create"), handler.Create)
		fines.POST("/:id/entries/:entryId/approve",
			middleware.RBACAuthorize(rbacService, "fine", "approve"),
			middleware.RateLimitByUser(1, 5),
			middleware.Idempotency(rdb),
			handler.ApproveEntry)
		fines.POST("/:id/entries/:entryId/reject",
			middleware.RBACAuthorize(rbacService, "fine", "approve"),
			middleware.RateLimitByUser(1, 5),
			middleware.Idempotency(rdb),
			handler.RejectEntry)
	}
}
