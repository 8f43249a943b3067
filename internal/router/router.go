package router

import (
	"github.com/onaries/account-book/internal/config"
	"github.com/onaries/account-book/internal/handler"
	"github.com/onaries/account-book/internal/ledger"
	"github.com/onaries/account-book/internal/middleware"
	"github.com/onaries/account-book/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires every API route to its handler.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	engine := ledger.NewEngine(db, cfg.Ledger.LegacyLoanReversal)
	agg := ledger.NewAggregator(db)
	formatter := ledger.NewFormatter(agg)

	var notifier notify.Sender = notify.NopNotifier{}
	if cfg.Notify.Enabled && cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL)
	}

	pageSize := cfg.App.PageSize

	api := r.Group("/api")
	api.Use(middleware.AuditMiddleware(db))

	mainCategoryHandler := handler.NewMainCategoryHandler(db, pageSize)
	api.GET("/main-category", mainCategoryHandler.List)
	api.GET("/main-category/all", mainCategoryHandler.ListAll)
	api.GET("/main-category/:id", mainCategoryHandler.Get)
	api.POST("/main-category", mainCategoryHandler.Create)
	api.PUT("/main-category/:id", mainCategoryHandler.Update)
	api.DELETE("/main-category/:id", mainCategoryHandler.Delete)

	categoryHandler := handler.NewCategoryHandler(db, pageSize)
	api.GET("/category", categoryHandler.List)
	api.GET("/category/all", categoryHandler.ListAll)
	api.GET("/category/:id", categoryHandler.Get)
	api.POST("/category", categoryHandler.Create)
	api.PUT("/category/:id", categoryHandler.Update)
	api.DELETE("/category/:id", categoryHandler.Delete)

	assetHandler := handler.NewAssetHandler(db, engine, agg, pageSize)
	api.GET("/asset", assetHandler.List)
	api.GET("/asset/all", assetHandler.ListAll)
	api.GET("/asset/total", assetHandler.Total)
	api.GET("/asset/history", assetHandler.History)
	api.GET("/asset/history/all", assetHandler.HistoryAll)
	api.GET("/asset/prev", assetHandler.Prev)
	api.GET("/asset/:id", assetHandler.Get)
	api.POST("/asset", assetHandler.Create)
	api.PUT("/asset/:id", assetHandler.Update)
	api.DELETE("/asset/:id", assetHandler.Delete)

	loanHandler := handler.NewLoanHandler(db, engine, pageSize)
	api.GET("/loan", loanHandler.List)
	api.GET("/loan/all", loanHandler.ListAll)
	api.GET("/loan/total", loanHandler.Total)
	api.GET("/loan/:id", loanHandler.Get)
	api.POST("/loan", loanHandler.Create)
	api.POST("/loan/:id/payment", loanHandler.Payment)
	api.PUT("/loan/:id", loanHandler.Update)
	api.DELETE("/loan/:id", loanHandler.Delete)

	accountCardHandler := handler.NewAccountCardHandler(db, pageSize)
	api.GET("/account-card", accountCardHandler.List)
	api.GET("/account-card/all", accountCardHandler.ListAll)
	api.GET("/account-card/:id", accountCardHandler.Get)
	api.POST("/account-card", accountCardHandler.Create)
	api.PUT("/account-card/:id", accountCardHandler.Update)
	api.DELETE("/account-card/:id", accountCardHandler.Delete)

	statementHandler := handler.NewStatementHandler(db, engine, agg, formatter, notifier, pageSize)
	api.GET("/statement", statementHandler.List)
	api.GET("/statement/summary", statementHandler.Summary)
	api.GET("/statement/category", statementHandler.Category)
	api.GET("/statement/subcategory", statementHandler.Subcategory)
	api.GET("/statement/total", statementHandler.Total)
	api.GET("/statement/calendar", statementHandler.Calendar)
	api.GET("/statement/name_list", statementHandler.NameList)
	api.GET("/statement/:id", statementHandler.Get)
	api.POST("/statement", statementHandler.Create)
	api.POST("/statement/:id/message", statementHandler.Message)
	api.POST("/statement/:id/alert", statementHandler.Alert)
	api.PUT("/statement/:id", statementHandler.Update)
	api.DELETE("/statement/:id", statementHandler.Delete)

	memoHandler := handler.NewMemoHandler(db, pageSize)
	api.GET("/memo", memoHandler.List)
	api.GET("/memo/:id", memoHandler.Get)
	api.POST("/memo", memoHandler.Create)
	api.PUT("/memo/:id", memoHandler.Update)
	api.DELETE("/memo/:id", memoHandler.Delete)

	exportHandler := handler.NewExportHandler(db)
	api.GET("/export/csv", exportHandler.CSV)
	api.GET("/export/xlsx", exportHandler.XLSX)

	backupHandler := handler.NewBackupHandler(db, cfg.Backup.Dir)
	api.POST("/backups", backupHandler.Create)
	api.GET("/backups", backupHandler.List)
	api.GET("/backups/:id/download", backupHandler.Download)
	api.POST("/backups/:id/restore", backupHandler.Restore)
	api.DELETE("/backups/:id", backupHandler.Delete)

	logHandler := handler.NewLogHandler(db, pageSize)
	api.GET("/logs", logHandler.List)

	return r
}
