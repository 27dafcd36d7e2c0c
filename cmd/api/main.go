package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolyo/internal/cache"
	"portfolyo/internal/config"
	"portfolyo/internal/database"
	"portfolyo/internal/handlers"
	"portfolyo/internal/logger"
	"portfolyo/internal/middleware"
	"portfolyo/internal/pricing"
	"portfolyo/internal/scheduler"
	"portfolyo/internal/services"
	"portfolyo/internal/validation"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "portfolyo/internal/docs" // Import swagger docs
)

// @title           Portfolyo API
// @version         1.0
// @description     Portfolyo is a personal investment portfolio tracker for crypto, stocks, gold and foreign currency, with market price refresh and portfolio reports.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Optional API key protecting mutating endpoints.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager and run migrations
	dbManager, err := database.NewManager(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validation.Register()

	// Price aggregation pipeline
	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	rates := pricing.NewRateService(httpClient, cfg.BaseCurrency, cfg.RequestTimeout)
	sources := pricing.DefaultSources(httpClient, rates, cfg.GoldAPIKey, cfg.RequestTimeout)
	aggregator := pricing.NewAggregator(sources, rates, log)

	// Report cache, flushed on every portfolio mutation
	reportCache := cache.New(cfg.CacheTTL, cfg.CacheTTL)
	defer reportCache.Stop()

	// Initialize services
	db := dbManager.DB()
	locks := services.NewAssetLocks()
	assetService := services.NewAssetService(db)
	transactionService := services.NewTransactionService(db, locks)
	priceService := services.NewPriceService(db, aggregator, locks)
	reportService := services.NewReportService(db)
	exportService := services.NewExportService(db, reportService)

	// Initialize handlers
	assetHandler := handlers.NewAssetHandler(assetService, reportCache)
	transactionHandler := handlers.NewTransactionHandler(transactionService, reportCache)
	priceHandler := handlers.NewPriceHandler(priceService, reportCache)
	reportHandler := handlers.NewReportHandler(reportService, reportCache)
	exportHandler := handlers.NewExportHandler(exportService, reportCache)

	// Initialize Gin router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Read-only routes
	v1.GET("/assets", assetHandler.ListAssets)
	v1.GET("/assets/:id", assetHandler.GetAsset)
	v1.GET("/assets/:id/transactions", transactionHandler.GetAssetTransactions)
	v1.GET("/transactions", transactionHandler.ListTransactions)

	reports := v1.Group("/reports")
	reports.GET("/summary", reportHandler.Summary)
	reports.GET("/monthly", reportHandler.Monthly)
	reports.GET("/performance", reportHandler.Performance)
	reports.GET("/distribution", reportHandler.Distribution)
	reports.GET("/top", reportHandler.TopMovers)
	reports.GET("/risk", reportHandler.Risk)
	reports.GET("/history", reportHandler.ValueHistory)
	reports.GET("/export.xlsx", exportHandler.ExportXLSX)

	v1.GET("/portfolio/export", exportHandler.ExportPortfolio)

	// Mutating routes, behind the optional API key guard
	protected := v1.Group("/")
	protected.Use(middleware.APIKeyAuth(cfg.APIKey))
	protected.POST("/assets", assetHandler.CreateAsset)
	protected.PUT("/assets/:id", assetHandler.UpdateAsset)
	protected.DELETE("/assets/:id", assetHandler.DeleteAsset)
	protected.POST("/assets/:id/buy", transactionHandler.RecordBuy)
	protected.POST("/assets/:id/sell", transactionHandler.RecordSell)
	protected.POST("/prices/refresh", priceHandler.RefreshPrices)
	protected.POST("/portfolio/import", exportHandler.ImportPortfolio)

	// Periodic price refresh
	var sched *scheduler.Scheduler
	if cfg.RefreshEnabled {
		sched, err = scheduler.New(cfg.RefreshCron, func(ctx context.Context) error {
			result, err := priceService.RefreshAll(ctx)
			if err != nil {
				return err
			}
			reportCache.Flush()
			log.Infow("scheduled price refresh finished",
				"updated", result.Updated, "failed", result.Failed, "skipped", result.Skipped,
				"duration", result.Duration)
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to start refresh scheduler: %w", err)
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Serve until interrupted, then drain in-flight requests
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Portfolyo server on port %s", cfg.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
