package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sjperalta/solarstock-api/docs"
	"github.com/sjperalta/solarstock-api/internal/config"
	"github.com/sjperalta/solarstock-api/internal/database"
	"github.com/sjperalta/solarstock-api/internal/handlers"
	"github.com/sjperalta/solarstock-api/internal/jobs"
	"github.com/sjperalta/solarstock-api/internal/middleware"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/internal/services"
	"github.com/sjperalta/solarstock-api/internal/storage"
	"github.com/sjperalta/solarstock-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Solarstock API
// @version 1.0
// @description Inventory, sales, installations and statements of account for a solar equipment retailer

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Setup(cfg.Environment)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if !cfg.EmailEnabled() {
		logger.Warn("Resend email disabled: RESEND_API_KEY or FROM_EMAIL not set. Statements can still be downloaded.")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "driver", cfg.DatabaseDriver, "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database", "driver", cfg.DatabaseDriver)

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage", "path", cfg.StoragePath)

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, store, cfg)

	if err := svcs.Auth.EnsureAdmin(context.Background()); err != nil {
		logger.Error("Failed to seed administrator", "error", err)
		os.Exit(1)
	}

	scheduleJobs(worker, svcs, cfg)

	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Statement e-mails may still be queued
	worker.Shutdown()
	logger.Info("Background worker stopped")

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Index)

		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/auth/me", h.Auth.Me)

			// Bulk deletes, imports and branding
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.DELETE("/items", h.Item.DeleteAll)
				admin.DELETE("/customers", h.Customer.DeleteAll)

				admin.POST("/imports/items", h.Import.Items)
				admin.POST("/imports/customers", h.Import.Customers)

				admin.POST("/settings/logo", h.Settings.UploadLogo)
				admin.DELETE("/settings/logo", h.Settings.DeleteLogo)

				admin.GET("/jobs/status", h.Job.Status)
			}

			items := protected.Group("/items")
			{
				items.GET("", h.Item.Index)
				items.POST("", h.Item.Upsert)
				items.GET("/categories", h.Item.Categories)
				items.GET("/low_stock", h.Item.LowStock)
				items.GET("/export", h.Item.Export)
				items.GET("/:item_id", h.Item.Show)
				items.DELETE("/:item_id", h.Item.Delete)
			}

			sales := protected.Group("/sales")
			{
				sales.GET("", h.Sale.Index)
				sales.POST("", h.Sale.Create)
				sales.GET("/export", h.Sale.Export)
				sales.GET("/:sale_id", h.Sale.Show)
			}

			customers := protected.Group("/customers")
			{
				customers.GET("", h.Customer.Index)
				customers.POST("", h.Customer.Create)
				customers.GET("/:customer_id", h.Customer.Show)
				customers.DELETE("/:customer_id", h.Customer.Delete)
				customers.GET("/:customer_id/sales", h.Customer.Sales)
				customers.GET("/:customer_id/sales/export", h.Customer.ExportSales)
				customers.GET("/:customer_id/installations", h.Customer.Installations)
				customers.GET("/:customer_id/installations/export", h.Customer.ExportInstallations)
				customers.GET("/:customer_id/statement", h.Customer.Statement)
				customers.POST("/:customer_id/statement/email", h.Customer.EmailStatement)
			}

			installations := protected.Group("/installations")
			{
				installations.GET("", h.Installation.Index)
				installations.POST("", h.Installation.Create)
				installations.GET("/export", h.Installation.Export)
				installations.DELETE("/:installation_id", h.Installation.Delete)
			}

			reports := protected.Group("/reports")
			{
				reports.GET("/dashboard", h.Report.Dashboard)
				reports.GET("/profit_loss", h.Report.ProfitLoss)
				reports.GET("/profit_loss_csv", h.Report.ProfitLossCSV)
				reports.GET("/profit_loss_pdf", h.Report.ProfitLossPDF)
			}

			protected.GET("/audit_logs", h.Audit.Index)
			protected.GET("/audit_logs/export", h.Audit.Export)

			protected.GET("/imports", h.Import.Index)
			protected.GET("/imports/:import_id", h.Import.Show)
			protected.GET("/imports/:import_id/file", h.Import.Download)

			protected.GET("/settings/logo", h.Settings.Logo)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	interval := time.Duration(cfg.LowStockCheckInterval) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	worker.ScheduleEveryImmediate("low_stock_check", interval, func(ctx context.Context) error {
		logger.Info("[Job] Checking low stock...")
		_, err := svcs.Item.CheckLowStock(ctx)
		return err
	})

	worker.ScheduleEvery("refresh_token_cleanup", 24*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Removing expired refresh tokens...")
		return svcs.Auth.CleanupExpiredTokens(ctx)
	})

	logger.Info("Scheduled recurring jobs", "jobs", worker.ScheduledNames())
}
