package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/freightdesk/backend/internal/application/billing"
	partnerapp "github.com/freightdesk/backend/internal/application/partner"
	auditinfra "github.com/freightdesk/backend/internal/infrastructure/audit"
	"github.com/freightdesk/backend/internal/infrastructure/cache"
	"github.com/freightdesk/backend/internal/infrastructure/config"
	"github.com/freightdesk/backend/internal/infrastructure/event"
	"github.com/freightdesk/backend/internal/infrastructure/logger"
	"github.com/freightdesk/backend/internal/infrastructure/persistence"
	"github.com/freightdesk/backend/internal/interfaces/http/handler"
	"github.com/freightdesk/backend/internal/interfaces/http/middleware"
	"github.com/freightdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting FreightDesk Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	feeRepo := persistence.NewGormFeeRepository(db.DB)
	jobRepo := persistence.NewGormJobRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepositoryWithPrefix(db.DB, cfg.Billing.InvoiceNumberPrefix)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Audit trail writer
	auditRecorder := auditinfra.NewGormRecorder(db.DB, log)

	// Statement cache (Redis when enabled, in-memory otherwise)
	cacheFactory := cache.NewStatementCacheFactory(cfg.Redis, cache.WithLogger(log))
	statementCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create statement cache", zap.Error(err))
	}

	// Initialize application services
	customerService := partnerapp.NewCustomerService(customerRepo, eventBus)
	feeService := billingapp.NewFeeService(feeRepo)
	jobService := billingapp.NewJobService(jobRepo, feeRepo, customerRepo, eventBus, auditRecorder)
	invoicingService := billingapp.NewInvoicingService(db.DB, invoiceRepo, jobRepo, customerRepo,
		eventBus, auditRecorder, statementCache, cfg.Billing)
	paymentService := billingapp.NewPaymentService(db.DB, invoiceRepo, paymentRepo, jobRepo,
		customerRepo, eventBus, auditRecorder, statementCache)
	statementService := billingapp.NewStatementService(invoiceRepo, paymentRepo, customerRepo,
		statementCache, cfg.Statement, log)

	// Initialize handlers
	customerHandler := handler.NewCustomerHandler(customerService)
	feeHandler := handler.NewFeeHandler(feeService)
	jobHandler := handler.NewJobHandler(jobService)
	invoiceHandler := handler.NewInvoiceHandler(invoicingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	statementHandler := handler.NewStatementHandler(statementService)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, cfg.App.Env)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. CORS - Handle cross-origin requests
	// 5. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Tenant scoping for all API routes except the public system ones
	tenantConfig := middleware.TenantMiddlewareConfig{
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Required: true,
		Logger:   log,
	}
	r.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Billing domain (fees, jobs, invoices, payments)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "billing service ready"})
	})

	// Fee catalog routes
	billingRoutes.POST("/fees", feeHandler.Create)
	billingRoutes.GET("/fees", feeHandler.List)
	billingRoutes.GET("/fees/:id", feeHandler.GetByID)
	billingRoutes.PUT("/fees/:id", feeHandler.Update)
	billingRoutes.DELETE("/fees/:id", feeHandler.Delete)

	// Clearance job routes
	billingRoutes.POST("/jobs", jobHandler.Create)
	billingRoutes.GET("/jobs", jobHandler.List)
	billingRoutes.GET("/jobs/:id", jobHandler.GetByID)
	billingRoutes.GET("/jobs/number/:number", jobHandler.GetByNumber)
	billingRoutes.POST("/jobs/:id/start", jobHandler.Start)
	billingRoutes.POST("/jobs/:id/charges", jobHandler.AddCharge)
	billingRoutes.DELETE("/jobs/:id/charges/:charge_id", jobHandler.RemoveCharge)
	billingRoutes.POST("/jobs/:id/cancel", jobHandler.Cancel)
	billingRoutes.POST("/jobs/:id/invoice", invoiceHandler.GenerateFromJob)

	// Invoice routes
	billingRoutes.POST("/invoices", invoiceHandler.CreateManual)
	billingRoutes.GET("/invoices", invoiceHandler.List)
	billingRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	billingRoutes.GET("/invoices/number/:number", invoiceHandler.GetByNumber)
	billingRoutes.POST("/invoices/:id/send", invoiceHandler.MarkSent)
	billingRoutes.POST("/invoices/:id/void", invoiceHandler.Void)

	// Payment routes
	billingRoutes.POST("/invoices/:id/payments", paymentHandler.Record)
	billingRoutes.GET("/invoices/:id/payments", paymentHandler.ListByInvoice)
	billingRoutes.GET("/payments", paymentHandler.List)
	billingRoutes.GET("/payments/:id", paymentHandler.GetByID)

	// Partner domain (customers, statements)
	partnerRoutes := router.NewDomainGroup("partner", "/partner")
	partnerRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "partner service ready"})
	})

	partnerRoutes.POST("/customers", customerHandler.Create)
	partnerRoutes.GET("/customers", customerHandler.List)
	partnerRoutes.GET("/customers/:id", customerHandler.GetByID)
	partnerRoutes.GET("/customers/code/:code", customerHandler.GetByCode)
	partnerRoutes.PUT("/customers/:id", customerHandler.Update)
	partnerRoutes.PUT("/customers/:id/billing-terms", customerHandler.SetBillingTerms)
	partnerRoutes.POST("/customers/:id/activate", customerHandler.Activate)
	partnerRoutes.POST("/customers/:id/deactivate", customerHandler.Deactivate)
	partnerRoutes.GET("/customers/:id/statement", statementHandler.Generate)

	// System routes (public)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)

	r.Register(billingRoutes).
		Register(partnerRoutes).
		Register(systemRoutes)

	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := eventBus.Stop(ctx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
