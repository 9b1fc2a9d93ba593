package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/bsm/redislock"
	"github.com/erp/vendorledger/internal/application/procurement"
	"github.com/erp/vendorledger/internal/domain/shared"
	"github.com/erp/vendorledger/internal/infrastructure/auth"
	"github.com/erp/vendorledger/internal/infrastructure/cache"
	"github.com/erp/vendorledger/internal/infrastructure/config"
	"github.com/erp/vendorledger/internal/infrastructure/lock"
	"github.com/erp/vendorledger/internal/infrastructure/logger"
	"github.com/erp/vendorledger/internal/infrastructure/persistence"
	"github.com/erp/vendorledger/internal/interfaces/http/handler"
	"github.com/erp/vendorledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting vendor ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer obs.shutdown(log)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := obs.instrumentDatabase(ctx, db); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Services
	scope := persistence.NewGormTransactionScope(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	balanceRepo := persistence.NewGormInvoiceBalanceRepository(db.DB)
	batchRepo := persistence.NewGormProductBatchRepository(db.DB)

	orders := procurement.NewPurchaseOrderService(scope, log)
	invoices := procurement.NewPurchaseInvoiceService(scope, log)
	reversals := procurement.NewReversalService(scope, log)
	payments := procurement.NewPaymentService(scope, log)
	debitNotes := procurement.NewDebitNoteService(scope, log)
	queries := procurement.NewLedgerQueryService(ledgerRepo, balanceRepo, log)
	batches := procurement.NewBatchService(scope, batchRepo, log)

	if m := obs.ledgerMetrics; m != nil {
		orders.SetLedgerMetrics(m)
		invoices.SetLedgerMetrics(m)
		reversals.SetLedgerMetrics(m)
		payments.SetLedgerMetrics(m)
		debitNotes.SetLedgerMetrics(m)
	}

	if cfg.Idempotency.Enabled {
		var client redis.UniversalClient
		if redisClient != nil {
			client = redisClient
		}
		store, err := cache.NewIdempotencyStoreFactory(client,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(cfg.App.Env != "production"),
		).CreateStore()
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() { _ = store.Close() }()
		payments.SetIdempotencyStore(store, shared.IdempotencyConfig{Enabled: true, TTL: cfg.Idempotency.TTL})
	}

	if cfg.VendorLock.Enabled {
		if redisClient == nil {
			log.Warn("vendor_lock.enabled requires redis; allocations rely on row locks only")
		} else {
			locker := lock.NewRedisVendorLocker(redislock.New(redisClient), cfg.VendorLock, log)
			payments.SetVendorLocker(locker)
			debitNotes.SetVendorLocker(locker)
		}
	}

	// HTTP
	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	mode := gin.DebugMode
	if cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Mode:             mode,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   cfg.Telemetry.Enabled,
		ProfilingEnabled: cfg.Telemetry.ProfilingEnabled,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		Verifier:         auth.NewVerifier(cfg.JWT),
		Meter:            obs.httpMeter(),
		Logger:           log,
		System:           handler.NewSystemHandler(version, checks),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewPurchaseOrderHandler(orders)).
		Register(handler.NewPurchaseInvoiceHandler(invoices, reversals, queries)).
		Register(handler.NewPaymentHandler(payments)).
		Register(handler.NewDebitNoteHandler(debitNotes)).
		Register(handler.NewLedgerHandler(queries)).
		Register(handler.NewBatchHandler(batches)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
