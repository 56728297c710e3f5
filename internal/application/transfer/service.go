package transferapp

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/bulk"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ServiceOption configures ImportService and ExportService
type ServiceOption func(*serviceDeps)

type serviceDeps struct {
	history bulk.TransferRunRepository
	metrics *telemetry.TransferMetrics
	now     func() time.Time
}

func newServiceDeps(opts []ServiceOption) serviceDeps {
	deps := serviceDeps{now: time.Now}
	for _, opt := range opts {
		opt(&deps)
	}
	return deps
}

// WithHistory records every run in repo
func WithHistory(repo bulk.TransferRunRepository) ServiceOption {
	return func(d *serviceDeps) {
		d.history = repo
	}
}

// WithMetrics counts records and run durations
func WithMetrics(m *telemetry.TransferMetrics) ServiceOption {
	return func(d *serviceDeps) {
		d.metrics = m
	}
}

// WithClock overrides the time source used for export file names
func WithClock(now func() time.Time) ServiceOption {
	return func(d *serviceDeps) {
		d.now = now
	}
}

// saveRun stores run in history. History is best effort: a failure is
// logged and never changes the outcome of the run.
func (d *serviceDeps) saveRun(ctx context.Context, run *bulk.TransferRun) {
	d.metrics.RecordRun(ctx, string(run.Kind), string(run.Status), run.Duration())
	if d.history == nil {
		return
	}
	if err := d.history.Save(context.WithoutCancel(ctx), run); err != nil {
		logger.L(ctx).Warn("Failed to save transfer run",
			zap.String("kind", string(run.Kind)),
			zap.String("status", string(run.Status)),
			zap.Error(err),
		)
	}
}
