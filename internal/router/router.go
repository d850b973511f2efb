package router

import (
	"github.com/chinhnt-ps/portfolio-be/internal/config"
	"github.com/chinhnt-ps/portfolio-be/internal/handler"
	"github.com/chinhnt-ps/portfolio-be/internal/middleware"
	"github.com/chinhnt-ps/portfolio-be/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and mounts the API.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	services := service.New(db, cfg.App.DefaultCurrency)
	pageSize := cfg.App.PageSize

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", authHandler.Me)

	accountHandler := handler.NewAccountHandler(services.Accounts, pageSize)
	protected.POST("/accounts", accountHandler.Create)
	protected.GET("/accounts", accountHandler.List)
	protected.GET("/accounts/:id", accountHandler.Get)
	protected.PUT("/accounts/:id", accountHandler.Update)
	protected.DELETE("/accounts/:id", accountHandler.Delete)
	protected.POST("/accounts/:id/adjust-balance", accountHandler.AdjustBalance)

	categoryHandler := handler.NewCategoryHandler(services.Categories)
	protected.POST("/categories", categoryHandler.Create)
	protected.GET("/categories", categoryHandler.List)
	protected.PUT("/categories/:id", categoryHandler.Update)
	protected.DELETE("/categories/:id", categoryHandler.Delete)

	transactionHandler := handler.NewTransactionHandler(services.Transactions, pageSize)
	protected.POST("/transactions", transactionHandler.Create)
	protected.GET("/transactions", transactionHandler.List)
	protected.GET("/transactions/:id", transactionHandler.Get)
	protected.PUT("/transactions/:id", transactionHandler.Update)
	protected.DELETE("/transactions/:id", transactionHandler.Delete)

	receivableHandler := handler.NewReceivableHandler(services.Receivables, services.Settlements, pageSize)
	protected.POST("/receivables", receivableHandler.Create)
	protected.GET("/receivables", receivableHandler.List)
	protected.GET("/receivables/:id", receivableHandler.Get)
	protected.PUT("/receivables/:id", receivableHandler.Update)
	protected.DELETE("/receivables/:id", receivableHandler.Delete)
	protected.GET("/receivables/:id/settlements", receivableHandler.ListSettlements)

	liabilityHandler := handler.NewLiabilityHandler(services.Liabilities, services.Settlements, pageSize)
	protected.POST("/liabilities", liabilityHandler.Create)
	protected.GET("/liabilities", liabilityHandler.List)
	protected.GET("/liabilities/:id", liabilityHandler.Get)
	protected.PUT("/liabilities/:id", liabilityHandler.Update)
	protected.DELETE("/liabilities/:id", liabilityHandler.Delete)
	protected.GET("/liabilities/:id/settlements", liabilityHandler.ListSettlements)

	settlementHandler := handler.NewSettlementHandler(services.Settlements, pageSize)
	protected.POST("/settlements", settlementHandler.Create)
	protected.GET("/settlements", settlementHandler.List)
	protected.GET("/settlements/:id", settlementHandler.Get)
	protected.PUT("/settlements/:id", settlementHandler.Update)
	protected.DELETE("/settlements/:id", settlementHandler.Delete)

	reportHandler := handler.NewReportHandler(services.Reports)
	protected.GET("/reports/dashboard", reportHandler.Dashboard)

	exportHandler := handler.NewExportHandler(db)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	auditHandler := handler.NewAuditHandler(db, pageSize)
	protected.GET("/audit-logs", auditHandler.List)

	return r
}
