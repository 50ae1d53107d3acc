package auth

import (
	"hr-backoffice/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", middleware.RateLimitByIP(0.5, 3), handler.Login)
		authGroup.POST("/register", middleware.RateLimitByIP(0.5, 3), handler.Register)
		authGroup.GET("/me", middleware.AuthMiddleware(), handler.Me)
	}
}
