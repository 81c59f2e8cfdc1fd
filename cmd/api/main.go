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
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/veloparc/velo-api/docs" // Swagger docs
	"github.com/veloparc/velo-api/internal/config"
	"github.com/veloparc/velo-api/internal/database"
	"github.com/veloparc/velo-api/internal/handlers"
	"github.com/veloparc/velo-api/internal/jobs"
	"github.com/veloparc/velo-api/internal/middleware"
	"github.com/veloparc/velo-api/internal/repository"
	"github.com/veloparc/velo-api/internal/services"
	"github.com/veloparc/velo-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Velo API
// @version 1.0
// @description REST API for the VeloParc bike rental management system

// @contact.name API Support
// @contact.email support@veloparc.fr

// @license.name MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
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

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("Database schema up to date")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, cfg, db)

	// Schedule recurring jobs
	scheduleJobs(worker, svcs)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown background worker
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		v1.POST("/auth/login", h.Auth.Login)

		// Public catalog of rentable bikes
		v1.GET("/bikes/rentable", h.Bike.Rentable)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Bike catalog
			protected.GET("/bikes", h.Bike.Index)
			protected.POST("/bikes", h.Bike.Create)
			protected.GET("/bikes/:bike_id", h.Bike.Show)
			protected.PUT("/bikes/:bike_id", h.Bike.Update)
			protected.DELETE("/bikes/:bike_id", h.Bike.Delete)

			// Customers
			protected.GET("/customers", h.Customer.Index)
			protected.POST("/customers", h.Customer.Create)
			protected.GET("/customers/:customer_id", h.Customer.Show)
			protected.PUT("/customers/:customer_id", h.Customer.Update)
			protected.DELETE("/customers/:customer_id", h.Customer.Delete)
			protected.GET("/customers/:customer_id/contracts", h.Customer.Contracts)

			// Rental contracts
			protected.GET("/contracts", h.Contract.Index)
			protected.POST("/contracts", h.Contract.Create)
			protected.GET("/contracts/stats", h.Contract.GetStats)
			protected.GET("/contracts/:contract_id", h.Contract.Show)
			protected.PATCH("/contracts/:contract_id", h.Contract.Update)
			protected.DELETE("/contracts/:contract_id", h.Contract.Delete)

			// Contract lifecycle
			protected.POST("/contracts/:contract_id/confirm", h.Contract.Confirm)
			protected.POST("/contracts/:contract_id/start", h.Contract.Start)
			protected.POST("/contracts/:contract_id/done", h.Contract.Finish)
			protected.POST("/contracts/:contract_id/cancel", h.Contract.Cancel)
			protected.POST("/contracts/:contract_id/reset_draft", h.Contract.ResetDraft)

			// Invoicing
			protected.POST("/contracts/:contract_id/invoice", h.Contract.CreateInvoice)
			protected.GET("/contracts/:contract_id/document", h.Report.ContractPDF)
			protected.GET("/invoices", h.Contract.ListInvoices)
			protected.GET("/invoices/:invoice_id", h.Contract.ShowInvoice)
			protected.GET("/invoices/:invoice_id/pdf", h.Report.InvoicePDF)

			// Reports and exports
			protected.GET("/reports/rental", h.Report.Rental)
			protected.GET("/reports/rental/csv", h.Report.RentalCSV)
			protected.GET("/reports/occupation", h.Report.Occupation)
			protected.GET("/reports/occupation/xlsx", h.Report.OccupationXLSX)

			// Audits
			protected.GET("/audits", h.Audit.Index)

			// Background jobs
			protected.GET("/jobs/status", h.Job.Status)
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services) {
	// Advance contract states every hour: start confirmed contracts whose
	// start date has passed, finish ongoing contracts past their end date
	worker.ScheduleEveryImmediate(1*time.Hour, func(ctx context.Context) error {
		logger.Info("[Job] Updating contract states...")
		return svcs.Contract.UpdateContractStates(ctx)
	})

	logger.Info("Scheduled recurring jobs")
}
