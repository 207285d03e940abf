package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	inventoryapp "github.com/retailcore/backend/internal/application/inventory"
	ledgerapp "github.com/retailcore/backend/internal/application/ledger"
	salesapp "github.com/retailcore/backend/internal/application/sales"
	"github.com/retailcore/backend/internal/infrastructure/cache"
	"github.com/retailcore/backend/internal/infrastructure/config"
	"github.com/retailcore/backend/internal/infrastructure/event"
	"github.com/retailcore/backend/internal/infrastructure/logger"
	"github.com/retailcore/backend/internal/infrastructure/persistence"
	"github.com/retailcore/backend/internal/infrastructure/telemetry"
	"github.com/retailcore/backend/internal/interfaces/http/handler"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
	"github.com/retailcore/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
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
		_ = log.Sync()
	}()

	log.Info("Starting RetailCore Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry is optional; a disabled config yields a no-op provider
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

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

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Resolve optional schema surfaces once; the ledger poster and the
	// stock level reads consult this instead of failing mid-request.
	capabilities := persistence.NewSchemaCapabilityResolver(db.DB)

	// Read-path repositories
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	stockLevelRepo := persistence.NewGormStockLevelRepositoryWithCapabilities(db.DB, capabilities)
	stockMovementRepo := persistence.NewGormStockMovementRepository(db.DB)
	stockTransferRepo := persistence.NewGormStockTransferRepository(db.DB)
	journalRepo := persistence.NewGormJournalRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRecordRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRecordRepository(db.DB)

	// Write paths run through transaction scopes so every operation is
	// all-or-nothing and contended stock waits are bounded by lock_timeout.
	salesScope := persistence.NewGormSalesTransactionScope(db.DB, cfg.Lock.Timeout)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB, cfg.Lock.Timeout)
	ledgerScope := persistence.NewGormLedgerTransactionScope(db.DB)

	// Application services
	saleService := salesapp.NewSaleService(salesScope, saleRepo)
	inventoryService := inventoryapp.NewInventoryService(inventoryScope, stockLevelRepo, stockMovementRepo, stockTransferRepo)
	postingService := ledgerapp.NewPostingService(
		ledgerScope, journalRepo, expenseRepo, paymentRepo,
		capabilities,
		ledgerapp.AccountDefaults{
			ExpenseCode:    cfg.Ledger.ExpenseAccountCode,
			CashCode:       cfg.Ledger.CashAccountCode,
			ReceivableCode: cfg.Ledger.ReceivableAccountCode,
		},
	)

	// Event bus for post-commit domain events
	eventBus := event.NewInMemoryEventBus(log)
	saleService.SetEventPublisher(eventBus)
	inventoryService.SetEventPublisher(eventBus)
	postingService.SetEventPublisher(eventBus)

	// Idempotency store for checkout retry deduplication
	storeFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	idempotencyStore, err := storeFactory.Create(cfg.Idempotency.Backend)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// HTTP handlers
	saleHandler := handler.NewSaleHandler(saleService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	ledgerHandler := handler.NewLedgerHandler(postingService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request id first so every later log line carries
	// it, recovery before logging, tracing before tenant resolution so
	// spans cover the whole request, idempotency last once the tenant
	// scope is known.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.CORS())
	engine.Use(middleware.Tenant())
	engine.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, log))

	// Probes stay outside API versioning and tenant scoping
	systemHandler.RegisterProbes(engine)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(saleHandler).
		Register(inventoryHandler).
		Register(ledgerHandler).
		Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

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

	log.Info("Server exited gracefully")
}
