// Command server runs the webstack HTTP API: customers and invoices on a SQL
// database, books and publishers on MongoDB.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	authapp "github.com/webstack/backend/internal/application/auth"
	libraryapp "github.com/webstack/backend/internal/application/library"
	salesapp "github.com/webstack/backend/internal/application/sales"
	"github.com/webstack/backend/internal/infrastructure/auth"
	"github.com/webstack/backend/internal/infrastructure/cache"
	"github.com/webstack/backend/internal/infrastructure/config"
	"github.com/webstack/backend/internal/infrastructure/event"
	"github.com/webstack/backend/internal/infrastructure/logger"
	"github.com/webstack/backend/internal/infrastructure/mongodb"
	"github.com/webstack/backend/internal/infrastructure/persistence"
	"github.com/webstack/backend/internal/infrastructure/telemetry"
	"github.com/webstack/backend/internal/interfaces/http/handler"
	"github.com/webstack/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.Config{
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

	log.Info("Starting webstack",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", Version),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	metrics := telemetry.NewMetrics()

	// SQL database for the sales model
	gormLog := logger.NewGormLogger(log.Named("gorm"), logger.MapGormLogLevel(cfg.Database.LogLevel))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: telemetry.DefaultSlowQueryThreshold,
			DBSystem:        cfg.Database.Driver,
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}
	inspector, err := persistence.NewSchemaInspector(db)
	if err != nil {
		log.Fatal("Failed to inspect database schema", zap.Error(err))
	}
	if err := persistence.VerifySchema(ctx, inspector); err != nil {
		log.Fatal("Database schema is incomplete", zap.Error(err), zap.Bool("auto_migrate", cfg.Database.AutoMigrate))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		if err := metrics.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			log.Warn("Failed to export connection pool metrics", zap.Error(err))
		}
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver))

	// MongoDB for the library model
	mongoClient, err := mongodb.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := mongodb.EnsureIndexes(ctx, mongoClient.Database()); err != nil {
		log.Fatal("Failed to create MongoDB indexes", zap.Error(err))
	}

	customerCache, err := cache.NewFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithLookupObserver(metrics),
	).Create()
	if err != nil {
		log.Fatal("Failed to initialize cache", zap.Error(err))
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if rc, ok := customerCache.(*cache.RedisCache); ok {
		blacklist = auth.NewRedisTokenBlacklistWithClient(rc.Client())
	}

	eventBus := event.NewInMemoryEventBus(log, event.WithObserver(metrics))
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	eventBus.Subscribe(cache.NewInvalidationHandler(customerCache, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Repositories and services
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	publisherRepo := mongodb.NewMongoPublisherRepository(mongoClient.Database())
	bookRepo := mongodb.NewMongoBookRepository(mongoClient.Database(), publisherRepo)

	customerService := salesapp.NewCustomerService(customerRepo, log,
		salesapp.WithCustomerCache(customerCache, cfg.Redis.CacheTTL),
		salesapp.WithCustomerEvents(eventBus),
	)
	invoiceService := salesapp.NewInvoiceService(invoiceRepo, eventBus, log)
	productService := salesapp.NewProductService(productRepo, eventBus, log)
	bookService := libraryapp.NewBookService(bookRepo, publisherRepo, eventBus, log)
	publisherService := libraryapp.NewPublisherService(publisherRepo)

	users, err := auth.NewUserStore(cfg.Security.Users, log)
	if err != nil {
		log.Fatal("Failed to load users", zap.Error(err))
	}
	authService := authapp.NewAuthService(users, auth.NewJWTService(cfg.JWT), blacklist, log)

	handlers := router.Handlers{
		Customers:  handler.NewCustomerHandler(customerService, invoiceService),
		Invoices:   handler.NewInvoiceHandler(invoiceService),
		Products:   handler.NewProductHandler(productService),
		Books:      handler.NewBookHandler(bookService, metrics),
		Publishers: handler.NewPublisherHandler(publisherService),
		Auth:       handler.NewAuthHandler(authService),
		System: handler.NewSystemHandler(Version, customerCache.Backend(), map[string]handler.Pinger{
			"database": handler.PingerFunc(func(context.Context) error { return db.Ping() }),
			"mongo":    mongoClient,
		}),
	}
	if cfg.Database.ConsoleEnabled {
		handlers.Console = handler.NewConsoleHandler(db, inspector)
		log.Info("Database console enabled", zap.String("path", cfg.Database.ConsolePath))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(cfg, handlers, router.Dependencies{
		Logger:        log,
		Authenticator: authService,
		Metrics:       metrics,
	})
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Reverse order of construction: stop taking requests before closing what they use.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	engine.Close()
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := mongoClient.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB", zap.Error(err))
	}
	if err := customerCache.Close(); err != nil {
		log.Error("Error closing cache", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
