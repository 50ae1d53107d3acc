package loan

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
	loans := r.Group("/loans")
	loans.Use(middleware.AuthMiddleware())
	{
		loans.GET("", middleware.RBACAuthorize(rbacService, "loan", "read"), handler.GetAll)
		loans.GET("/:id", middleware.RBACAuthorize(rbacService, "loan", "read"), handler.GetByID)
		loans.GET("/employee/:employeeId", middleware.RBACAuthorize(rbacService, "loan", "read"), handler.GetByEmployee)
		loans.POST("", middleware.RBACAuthorize(rbacService, "loan", "create"), handler.Create)
		loans.POST("/:id/approve",
			middleware.RBACAuthorize(rbacService, "loan", "approve"),
			middleware.RateLimitByUser(1, 5),
			middleware.Idempotency(rdb),
			handler.Approve)
		loans.POST("/:id/reject",
			middleware.RBACAuthorize(rbacService, "loan", "approve"),
			middleware.RateLimitByUser(1, 5),
			middleware.Idempotency(rdb),
			handler.Reject)
	}
}
