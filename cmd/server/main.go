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
	"github.com/storefront/backend/internal/bootstrap"
	"github.com/storefront/backend/internal/domain/transfer"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Storefront Transfer API
//	@version		1.0
//	@description	Bulk import and export of storefront data as JSON, CSV or tarball archives

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()
	rt, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize runtime", zap.Error(err))
	}
	log = rt.Logger
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rt.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during runtime shutdown", zap.Error(err))
		}
	}()

	// Idempotency keys live in redis when it is reachable, in process otherwise.
	idempotencyStore, err := cache.NewIdempotencyStore(ctx, cfg.Redis, cache.StoreOptions{
		Logger:       log,
		RequireRedis: cfg.App.Env == "production",
	})
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.Backup.Enabled {
		stopBackups, err := startBackups(ctx, cfg.Backup, rt, log)
		if err != nil {
			log.Fatal("Failed to start backup scheduler", zap.Error(err))
		}
		defer stopBackups()
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := router.NewEngine(router.Options{
		HTTP:           cfg.HTTP,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		MetricsEnabled: cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		Telemetry:      rt.Telemetry,
		Logger:         log,
		Tokens:         jwtService,
		Idempotency:    idempotencyStore,
		IdempotencyTTL: cfg.Transfer.IdempotencyTTL,
		System:         handler.NewSystemHandler(rt.DB, cfg.App.Name, version),
		Transfer: handler.NewTransferHandler(
			rt.ImportService(),
			rt.ExportService(),
			rt.HistoryService(),
			cfg.Transfer.ImportTimeout,
		),
	})
	defer engine.Close()

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// startBackups runs the daily export into photo storage. The returned
// function stops the trigger and then the workers.
func startBackups(ctx context.Context, cfg config.BackupConfig, rt *bootstrap.Runtime, log *zap.Logger) (func(), error) {
	hour, minute, err := scheduler.ParseCronSchedule(cfg.Schedule)
	if err != nil {
		return nil, err
	}

	allTypes := make([]string, 0, len(transfer.AllTypes()))
	for _, t := range transfer.AllTypes() {
		allTypes = append(allTypes, t.String())
	}
	executor := scheduler.NewBackupExecutor(rt.ExportService(), rt.Photos, cfg.Prefix, allTypes, log)

	schedCfg := scheduler.DefaultConfig()
	schedCfg.JobTimeout = cfg.JobTimeout
	schedCfg.RetryAttempts = cfg.RetryAttempts
	schedCfg.RetryDelay = cfg.RetryDelay
	sched, err := scheduler.New(schedCfg, executor, log)
	if err != nil {
		return nil, err
	}
	if err := sched.Start(ctx); err != nil {
		return nil, err
	}

	triggerCfg := scheduler.DefaultCronTriggerConfig()
	triggerCfg.Hour, triggerCfg.Minute = hour, minute
	triggerCfg.Types = cfg.Types
	triggerCfg.Format = cfg.Format
	trigger := scheduler.NewCronTrigger(triggerCfg, sched, log)
	if err := trigger.Start(ctx); err != nil {
		return nil, err
	}

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := trigger.Stop(stopCtx); err != nil {
			log.Warn("Backup trigger stop failed", zap.Error(err))
		}
		if err := sched.Stop(stopCtx); err != nil {
			log.Warn("Backup scheduler stop failed", zap.Error(err))
		}
	}, nil
}
