package app

import (
	"database/sql"
	"path/filepath"

	"hr-backoffice/internal/attachment"
	"hr-backoffice/internal/auth"
	"hr-backoffice/internal/config"
	"hr-backoffice/internal/employee"
	"hr-backoffice/internal/fine"
	"hr-backoffice/internal/hierarchy"
	"hr-backoffice/internal/loan"
	"hr-backoffice/internal/messaging/kafka"
	"hr-backoffice/internal/notification"
	"hr-backoffice/internal/rbac"
	"hr-backoffice/internal/rbac/infra"
	"hr-backoffice/internal/reward"
	"hr-backoffice/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	cfg *config.Config,
) error {
	logger := zap.L().Named("app.registry")

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	loanRepo := loan.NewRepository(gormDB)
	fineRepo := fine.NewRepository(gormDB)
	rewardRepo := reward.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Approval Core ---
	resolver := hierarchy.NewResolver(employeeRepo)
	dispatcher := notification.NewDispatcher()

	attachments := attachment.NewNoopStore()
	if cfg.S3Endpoint != "" {
		attachments, err = attachment.NewStore(cfg)
		if err != nil {
			return err
		}
	} else {
		logger.Warn("object storage not configured; attachments disabled")
	}

	// --- Services ---
	authService := auth.NewService(authRepo)
	employeeService := employee.NewService(employeeRepo)
	loanService := loan.NewService(db, loanRepo, employeeRepo, counterRepo, resolver, outboxRepo, dispatcher, attachments)
	fineService := fine.NewService(db, fineRepo, employeeRepo, counterRepo, resolver, outboxRepo, dispatcher)
	rewardService := reward.NewService(db, rewardRepo, employeeRepo, counterRepo, resolver, outboxRepo, dispatcher)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	employeeHandler := employee.NewHandler(employeeService)
	loanHandler := loan.NewHandlerWithRedis(loanService, rdb)
	fineHandler := fine.NewHandlerWithRedis(fineService, rdb)
	rewardHandler := reward.NewHandlerWithRedis(rewardService, rdb)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		loan.RegisterRoutes(api, loanHandler, rbacService, rdb)
		fine.RegisterRoutes(api, fineHandler, rbacService, rdb)
		reward.RegisterRoutes(api, rewardHandler, rbacService, rdb)
	}

	return nil
}
