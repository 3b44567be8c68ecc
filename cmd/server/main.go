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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wecre8/oto/internal/application/shipping"
	"github.com/wecre8/oto/internal/domain/shared/plugin"
	"github.com/wecre8/oto/internal/infrastructure/auth"
	"github.com/wecre8/oto/internal/infrastructure/config"
	"github.com/wecre8/oto/internal/infrastructure/logger"
	"github.com/wecre8/oto/internal/infrastructure/migration"
	"github.com/wecre8/oto/internal/infrastructure/oto"
	"github.com/wecre8/oto/internal/infrastructure/persistence"
	"github.com/wecre8/oto/internal/infrastructure/scheduler"
	"github.com/wecre8/oto/internal/infrastructure/site"
	"github.com/wecre8/oto/internal/infrastructure/telemetry"
	"github.com/wecre8/oto/internal/interfaces/http/handler"
	"github.com/wecre8/oto/internal/interfaces/http/router"
	"github.com/wecre8/oto/migrations"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Bootstrap logger, used until the OTLP log pipeline is up
	bootLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}

	initCtx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(initCtx, telemetryCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	logProvider, err := telemetry.NewLoggerProvider(initCtx, telemetryCfg, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, logProvider.Core(cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting OTO fulfillment service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.Bool("oto_active", cfg.Plugins.OTO.Active),
	)

	// Database
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
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	if cfg.Telemetry.DBTraceEnabled {
		dbSystem := "postgresql"
		if cfg.Database.Driver == "sqlite" {
			dbSystem = "sqlite"
		}
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        dbSystem,
		}, log); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		if err := migrateSchema(db, cfg.Database.Driver, log); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		log.Info("Database schema migrated")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Task queue
	var redisClient *redis.Client
	schedOpts := []scheduler.Option{scheduler.WithMetrics(registry)}
	var broker scheduler.Broker
	switch cfg.Worker.Broker {
	case "redis":
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		if err := redisClient.Ping(initCtx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		redisBroker := scheduler.NewRedisBroker(redisClient, scheduler.RedisBrokerConfig{
			QueueKey:  cfg.Worker.QueueKey,
			ResultTTL: cfg.Worker.ResultTTL,
		})
		broker = redisBroker
		schedOpts = append(schedOpts, scheduler.WithResultBackend(redisBroker))
	default:
		broker = scheduler.NewMemoryBroker(cfg.Worker.QueueSize)
		schedOpts = append(schedOpts, scheduler.WithResultBackend(scheduler.NewMemoryResultBackend(cfg.Worker.ResultTTL)))
	}

	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		MaxConcurrentTasks: cfg.Worker.MaxConcurrentTasks,
		TaskTimeout:        cfg.Worker.TaskTimeout,
	}, broker, log, schedOpts...)

	// Storefront domain
	var siteProvider site.Provider
	if cfg.Site.Domain != "" {
		siteProvider = site.NewStaticProvider(cfg.Site.Domain)
	} else {
		siteProvider = site.NewRepositoryProvider(
			persistence.NewGormSiteRepository(db.DB), cfg.Site.ID, cfg.Site.CacheTTL, log)
	}

	// OTO plugin
	otoClient := oto.NewClient(oto.NewPayloadBuilder(siteProvider), log, oto.WithMetrics(oto.NewMetrics(registry)))
	otoPlugin := oto.NewPlugin(cfg.Plugins.OTO.Active, oto.Config(cfg.Plugins.OTO.Settings), sched, log)

	plugins := plugin.NewPluginManager()
	if err := plugins.Register(otoPlugin); err != nil {
		log.Fatal("Failed to register plugin", zap.String("plugin", otoPlugin.Name()), zap.Error(err))
	}
	log.Info("Plugins registered", zap.Strings("plugins", plugins.ListPlugins()))

	shippingService := shipping.NewService(
		persistence.NewGormFulfillmentRepository(db.DB),
		plugins,
		otoPlugin,
		sched,
		otoClient,
		log,
	)
	if err := shippingService.RegisterHandlers(); err != nil {
		log.Fatal("Failed to register task handlers", zap.Error(err))
	}

	schedCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	if err := sched.Start(schedCtx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// HTTP
	checks := map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
		"scheduler": func(context.Context) error {
			if !sched.IsRunning() {
				return scheduler.ErrSchedulerNotRunning
			}
			return nil
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	engine, err := router.NewEngine(router.Config{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Logger:         log,
		Registry:       registry,
		Tokens:         auth.NewHookTokenService(cfg.Auth),
		Shipping:       shippingService,
		Health:         handler.NewHealthHandler(version, checks),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := sched.Stop(ctx); err != nil {
		log.Error("Scheduler did not drain", zap.Error(err))
	}
	if err := logProvider.Shutdown(ctx); err != nil {
		log.Error("Failed to flush logs", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Error("Failed to flush traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// migrateSchema applies the embedded SQL migrations on PostgreSQL and falls
// back to gorm AutoMigrate for SQLite, which the migrations do not target.
func migrateSchema(db *persistence.Database, driver string, log *zap.Logger) error {
	if driver == "sqlite" {
		return db.Migrate()
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return m.Up()
}
