package transferapp

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/domain/bulk"
	"github.com/storefront/backend/internal/domain/transfer"
	"github.com/storefront/backend/internal/infrastructure/archive"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ArchiveEncoder serializes exported collections
type ArchiveEncoder interface {
	Encode(ctx context.Context, format archive.Format, order []transfer.DataType, data map[transfer.DataType][]transfer.Record) (*archive.Encoded, error)
}

// ExportInput names the collections to export and the archive format
type ExportInput struct {
	Types       []string
	Format      string
	RequestedBy string
}

// ExportResult is a finished archive ready to be sent
type ExportResult struct {
	ContentType string
	FileName    string
	Data        []byte
}

// ExportService writes collections into a downloadable archive. Export is
// read only and all or nothing: one failing exporter fails the whole export.
type ExportService struct {
	encoder     ArchiveEncoder
	collections CollectionResolver
	serviceDeps
}

// NewExportService creates a new ExportService
func NewExportService(encoder ArchiveEncoder, collections CollectionResolver, opts ...ServiceOption) *ExportService {
	return &ExportService{
		encoder:     encoder,
		collections: collections,
		serviceDeps: newServiceDeps(opts),
	}
}

// Export runs the exporters in request order and encodes the result.
func (s *ExportService) Export(ctx context.Context, in ExportInput) (*ExportResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "transfer.export", telemetry.SpanAttrFormat, in.Format)
	defer span.End()

	order, err := requestedTypes(in.Types)
	if err == nil {
		err = checkFormat(in.Format)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	run := bulk.NewExportRun(in.Format, typeNames(order), in.RequestedBy)
	result, err := s.export(ctx, order, archive.Format(in.Format))
	if err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Error("Export failed", zap.String("format", in.Format), zap.Error(err))
		_ = run.Fail(err)
		s.saveRun(ctx, run)
		return nil, err
	}

	_ = run.CompleteExport(result.FileName)
	s.saveRun(ctx, run)
	logger.L(ctx).Info("Export finished",
		zap.String("file_name", result.FileName),
		zap.Strings("collections", run.Collections),
		zap.Int("bytes", len(result.Data)),
	)
	return result, nil
}

func (s *ExportService) export(ctx context.Context, order []transfer.DataType, format archive.Format) (*ExportResult, error) {
	data := make(map[transfer.DataType][]transfer.Record, len(order))
	for _, t := range order {
		records, err := s.exportCollection(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", t, err)
		}
		data[t] = records
	}

	encoded, err := s.encoder.Encode(ctx, format, order, data)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		ContentType: encoded.ContentType,
		FileName:    ExportFileName(s.now(), encoded.Extension),
		Data:        encoded.Data,
	}, nil
}

func (s *ExportService) exportCollection(ctx context.Context, t transfer.DataType) ([]transfer.Record, error) {
	ctx, span := telemetry.StartSpan(ctx, "transfer.export "+string(t), telemetry.SpanAttrCollection, string(t))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collection, ok := s.collections.ForType(t)
	if !ok {
		return nil, fmt.Errorf("no exporter registered for %q", string(t))
	}
	records, err := collection.Export(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrRecords, len(records))
	s.metrics.RecordExported(ctx, string(t), len(records))
	return records, nil
}

// ExportFileName is the download name of an archive created at t,
// e.g. export-2024-05-01T10:00:00Z.json
func ExportFileName(t time.Time, extension string) string {
	return "export-" + t.UTC().Format(time.RFC3339) + "." + extension
}

// requestedTypes resolves names in request order, dropping repeats.
func requestedTypes(names []string) ([]transfer.DataType, error) {
	if len(names) == 0 {
		return nil, transfer.NewGenericError("at least one data type is required")
	}
	seen := make(map[transfer.DataType]bool, len(names))
	out := make([]transfer.DataType, 0, len(names))
	for _, name := range names {
		t, ok := transfer.ParseDataType(name)
		if !ok {
			return nil, transfer.NewGenericError(fmt.Sprintf("%q is not recognized data type", name))
		}
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out, nil
}

func checkFormat(format string) error {
	switch archive.Format(format) {
	case archive.FormatJSON, archive.FormatCSV:
		return nil
	}
	return transfer.NewGenericError(fmt.Sprintf("%q is not supported export format", format))
}

func typeNames(types []transfer.DataType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
