package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrCollection = attribute.Key("collection")
	AttrRunKind    = attribute.Key("kind")
	AttrRunStatus  = attribute.Key("status")
)

// TransferDurationBuckets are histogram boundaries (seconds) for whole runs.
var TransferDurationBuckets = []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900}

// TransferMetrics counts records moved by import and export runs.
type TransferMetrics struct {
	recordsAdded   metric.Int64Counter
	recordsDeleted metric.Int64Counter
	errors         metric.Int64Counter
	exported       metric.Int64Counter
	runDuration    metric.Float64Histogram
}

// NewTransferMetrics registers the instruments on meter.
func NewTransferMetrics(meter metric.Meter) (*TransferMetrics, error) {
	m := &TransferMetrics{}
	var err error

	if m.recordsAdded, err = meter.Int64Counter("transfer.records.added",
		metric.WithDescription("Records created by imports"), metric.WithUnit("{record}")); err != nil {
		return nil, fmt.Errorf("failed to create counter transfer.records.added: %w", err)
	}
	if m.recordsDeleted, err = meter.Int64Counter("transfer.records.deleted",
		metric.WithDescription("Records removed by clearing imports"), metric.WithUnit("{record}")); err != nil {
		return nil, fmt.Errorf("failed to create counter transfer.records.deleted: %w", err)
	}
	if m.errors, err = meter.Int64Counter("transfer.errors",
		metric.WithDescription("Collection failures during imports"), metric.WithUnit("{error}")); err != nil {
		return nil, fmt.Errorf("failed to create counter transfer.errors: %w", err)
	}
	if m.exported, err = meter.Int64Counter("transfer.records.exported",
		metric.WithDescription("Records written to export archives"), metric.WithUnit("{record}")); err != nil {
		return nil, fmt.Errorf("failed to create counter transfer.records.exported: %w", err)
	}
	if m.runDuration, err = meter.Float64Histogram("transfer.run.duration",
		metric.WithDescription("Wall time of import and export runs"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(TransferDurationBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create histogram transfer.run.duration: %w", err)
	}
	return m, nil
}

// RecordAdded counts imported records of one collection.
func (m *TransferMetrics) RecordAdded(ctx context.Context, collection string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.recordsAdded.Add(ctx, int64(n), metric.WithAttributes(AttrCollection.String(collection)))
}

// RecordDeleted counts cleared records of one collection.
func (m *TransferMetrics) RecordDeleted(ctx context.Context, collection string, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.recordsDeleted.Add(ctx, n, metric.WithAttributes(AttrCollection.String(collection)))
}

// RecordError counts one failed collection step.
func (m *TransferMetrics) RecordError(ctx context.Context, collection string) {
	if m == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(AttrCollection.String(collection)))
}

// RecordExported counts exported records of one collection.
func (m *TransferMetrics) RecordExported(ctx context.Context, collection string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.exported.Add(ctx, int64(n), metric.WithAttributes(AttrCollection.String(collection)))
}

// RecordRun observes the duration of a finished run.
func (m *TransferMetrics) RecordRun(ctx context.Context, kind, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.runDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(AttrRunKind.String(kind), AttrRunStatus.String(status)))
}
