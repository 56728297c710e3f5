// Package bootstrap assembles the storefront runtime shared by the server
// and the offline transfer CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	transferapp "github.com/storefront/backend/internal/application/transfer"
	"github.com/storefront/backend/internal/infrastructure/archive"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

// Runtime owns the long-lived collaborators of one process
type Runtime struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *persistence.Database
	Photos      storage.PhotoStorage
	Codec       *archive.Codec
	Collections *transferapp.Collections
	Runs        *persistence.GormTransferRunRepository
	Telemetry   *telemetry.Providers
	Metrics     *telemetry.TransferMetrics
}

// New starts telemetry, connects the database and builds the transfer
// collaborators. On error everything already started is shut down.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (rt *Runtime, err error) {
	rt = &Runtime{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			_ = rt.Shutdown(context.Background())
			rt = nil
		}
	}()

	if err = rt.startTelemetry(ctx); err != nil {
		return rt, err
	}

	gormLog := logger.NewGormLogger(rt.Logger, logger.MapGormLogLevel(cfg.Database.LogLevel))
	rt.DB, err = persistence.NewDatabaseWithLogger(ctx, &cfg.Database, gormLog, rt.Logger)
	if err != nil {
		return rt, err
	}
	rt.Logger.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	if cfg.Database.Driver == "sqlite" {
		dbTracing.DBSystem = "sqlite"
	}
	if err = telemetry.NewDBTracingPlugin(dbTracing, rt.Logger).Register(rt.DB.DB); err != nil {
		return rt, fmt.Errorf("register database tracing: %w", err)
	}

	// sqlite has no versioned migrations; the schema comes from the models.
	if cfg.Database.Driver == "sqlite" {
		if err = rt.DB.DB.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
			return rt, fmt.Errorf("auto migrate: %w", err)
		}
	}

	rt.Photos, err = storage.New(ctx, &cfg.Storage, rt.Logger)
	if err != nil {
		return rt, fmt.Errorf("photo storage: %w", err)
	}

	codecOpts := []archive.Option{archive.WithLogger(rt.Logger)}
	if cfg.Transfer.TempDir != "" {
		codecOpts = append(codecOpts, archive.WithTempDir(cfg.Transfer.TempDir))
	}
	rt.Codec = archive.NewCodec(rt.Photos, codecOpts...)
	rt.Collections = transferapp.NewCollections(Repositories(rt.DB.DB))
	rt.Runs = persistence.NewGormTransferRunRepository(rt.DB.DB)

	if rt.Telemetry.MetricsEnabled() {
		rt.Metrics, err = telemetry.NewTransferMetrics(rt.Telemetry.Meter("storefront/transfer"))
		if err != nil {
			return rt, err
		}
	}
	return rt, nil
}

func (rt *Runtime) startTelemetry(ctx context.Context) error {
	tc := rt.Config.Telemetry
	providers, err := telemetry.Start(ctx, telemetry.Config{
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
		Traces:            tc.Enabled,
		SamplingRatio:     tc.SamplingRatio,
		Metrics:           tc.Enabled && tc.MetricsEnabled,
		MetricsInterval:   tc.MetricsInterval,
		Logs:              tc.Enabled && tc.LogsEnabled,
	}, rt.Logger)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	rt.Telemetry = providers
	rt.Logger = providers.Bridge(rt.Logger, zapcore.InfoLevel)
	return nil
}

// Repositories builds the GORM repositories behind every collection
func Repositories(db *gorm.DB) transferapp.Repositories {
	return transferapp.Repositories{
		Settings:        persistence.NewGormSettingRepository(db),
		Users:           persistence.NewGormUserRepository(db),
		Wishlists:       persistence.NewGormWishlistRepository(db),
		Products:        persistence.NewGormProductRepository(db),
		ProductPhotos:   persistence.NewGormProductPhotoRepository(db),
		Categories:      persistence.NewGormCategoryRepository(db),
		AttributeTypes:  persistence.NewGormAttributeTypeRepository(db),
		DeliveryMethods: persistence.NewGormDeliveryMethodRepository(db),
		PaymentMethods:  persistence.NewGormPaymentMethodRepository(db),
		Orders:          persistence.NewGormOrderRepository(db),
		Returns:         persistence.NewGormReturnRepository(db),
		Pages:           persistence.NewGormPageRepository(db),
	}
}

func (rt *Runtime) serviceOptions() []transferapp.ServiceOption {
	opts := []transferapp.ServiceOption{transferapp.WithHistory(rt.Runs)}
	if rt.Metrics != nil {
		opts = append(opts, transferapp.WithMetrics(rt.Metrics))
	}
	return opts
}

// ImportService returns an import orchestrator over the runtime's collections
func (rt *Runtime) ImportService() *transferapp.ImportService {
	return transferapp.NewImportService(rt.Codec, rt.Collections, rt.serviceOptions()...)
}

// ExportService returns an export orchestrator over the runtime's collections
func (rt *Runtime) ExportService() *transferapp.ExportService {
	return transferapp.NewExportService(rt.Codec, rt.Collections, rt.serviceOptions()...)
}

// HistoryService returns the run history reader
func (rt *Runtime) HistoryService() *transferapp.HistoryService {
	return transferapp.NewHistoryService(rt.Runs, rt.Config.Transfer.HistoryLimit)
}

// Shutdown closes the database and flushes telemetry, in reverse start order.
func (rt *Runtime) Shutdown(ctx context.Context) error {
	var errs []error
	if rt.DB != nil {
		if err := rt.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if err := rt.Telemetry.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
