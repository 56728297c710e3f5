package transferapp

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/storefront/backend/internal/domain/bulk"
	"github.com/storefront/backend/internal/domain/transfer"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ArchiveDecoder turns uploaded archive bytes into named collections.
// The returned archive is closed by the caller.
type ArchiveDecoder interface {
	Decode(ctx context.Context, mimeType string, r io.Reader) (*transfer.Archive, error)
}

// ImportInput describes one uploaded archive
type ImportInput struct {
	FileName string
	MimeType string
	Body     io.Reader
	// Clear wipes every collection present in the archive before importing.
	Clear bool
	// NoImport skips the import phase, so together with Clear it only deletes.
	NoImport    bool
	RequestedBy string
}

// ImportService restores collections from an archive.
//
// The archive is decoded and its collection names are checked against the
// dependency registry; a failure there aborts before anything is touched.
// Photo binaries stay staged until the productPhotos step, and are removed
// again when that step fails.
// Collections are then cleared dependents first and imported dependencies
// first. A collection that fails is reported and skipped while the others
// carry on, so an import can partially succeed.
type ImportService struct {
	decoder     ArchiveDecoder
	collections CollectionResolver
	serviceDeps
}

// NewImportService creates a new ImportService
func NewImportService(decoder ArchiveDecoder, collections CollectionResolver, opts ...ServiceOption) *ImportService {
	return &ImportService{
		decoder:     decoder,
		collections: collections,
		serviceDeps: newServiceDeps(opts),
	}
}

// Import applies the archive and reports what changed per collection.
// Only archive level problems are returned as errors; per-collection
// failures are listed in the report.
func (s *ImportService) Import(ctx context.Context, in ImportInput) (*transfer.Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "transfer.import",
		telemetry.SpanAttrClear, in.Clear,
		telemetry.SpanAttrNoImport, in.NoImport,
	)
	defer span.End()

	log := logger.L(ctx).With(zap.String("file_name", in.FileName), zap.String("mime_type", in.MimeType))
	run := bulk.NewImportRun(in.FileName, in.MimeType, in.Clear, in.NoImport, in.RequestedBy)

	decoded, err := s.decoder.Decode(ctx, in.MimeType, in.Body)
	defer func() {
		if err := decoded.Close(); err != nil {
			log.Warn("Failed to discard staged photos", zap.Error(err))
		}
	}()
	if err == nil {
		err = transfer.CheckDependencies(decoded.Dataset.Names())
	}
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Import rejected", zap.Error(err))
		_ = run.Fail(err)
		s.saveRun(ctx, run)
		return nil, err
	}

	order := transfer.Filter(decoded.Dataset.Names())
	log.Info("Import started", zap.Int("collections", len(order)),
		zap.Bool("clear", in.Clear), zap.Bool("no_import", in.NoImport))

	report := transfer.NewReport()
	if in.Clear {
		for i := len(order) - 1; i >= 0; i-- {
			t := order[i]
			count, err := s.clear(ctx, t)
			report.RecordDeleted(t, count, err)
		}
	}

	if !in.NoImport {
		idMaps := transfer.IDMaps{}
		for _, t := range order {
			ids, err := s.importStep(ctx, t, decoded, idMaps)
			if err != nil {
				ids = transfer.IDMap{}
			}
			idMaps[t] = ids
			report.RecordAdded(t, ids, err)
		}
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAdded, report.TotalAdded(),
		telemetry.SpanAttrDeleted, report.TotalDeleted(),
	)
	_ = run.CompleteImport(report)
	s.saveRun(ctx, run)

	log.Info("Import finished",
		zap.Int("added", report.TotalAdded()),
		zap.Int64("deleted", report.TotalDeleted()),
		zap.Int("errors", len(report.Errors)),
		zap.Duration("duration", run.Duration()),
	)
	return report, nil
}

// importStep imports one collection. For productPhotos the staged binaries
// are published first so records never point at photos that are not there,
// and revoked when the records could not be imported.
func (s *ImportService) importStep(ctx context.Context, t transfer.DataType, decoded *transfer.Archive, idMaps transfer.IDMaps) (transfer.IDMap, error) {
	rows := decoded.Dataset.Lookup(t)
	if t != transfer.ProductPhotos || decoded.Photos == nil {
		return s.importCollection(ctx, t, rows, idMaps)
	}

	err := decoded.Photos.Publish(ctx)
	if err == nil {
		var ids transfer.IDMap
		if ids, err = s.importCollection(ctx, t, rows, idMaps); err == nil {
			return ids, nil
		}
	} else {
		err = fmt.Errorf("%q photos: %w", string(t), err)
	}

	if rerr := decoded.Photos.Revoke(context.WithoutCancel(ctx)); rerr != nil {
		logger.L(ctx).Warn("Failed to revoke published photos", zap.Error(rerr))
	}
	return nil, err
}

func (s *ImportService) clear(ctx context.Context, t transfer.DataType) (count int64, err error) {
	ctx, span := telemetry.StartSpan(ctx, "transfer.clear "+string(t), telemetry.SpanAttrCollection, string(t))
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
			s.metrics.RecordError(ctx, string(t))
			logger.L(ctx).Warn("Clear failed", zap.String("collection", string(t)), zap.Error(err))
		}
		span.End()
	}()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	collection, ok := s.collections.ForType(t)
	if !ok {
		return 0, fmt.Errorf("no importer registered for %q", string(t))
	}

	start := time.Now()
	count, err = collection.Clear(ctx)
	if err != nil {
		return 0, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrDeleted, count)
	s.metrics.RecordDeleted(ctx, string(t), count)
	logger.L(ctx).Debug("Collection cleared", zap.String("collection", string(t)),
		zap.Int64("deleted", count), zap.Duration("duration", time.Since(start)))
	return count, nil
}

func (s *ImportService) importCollection(ctx context.Context, t transfer.DataType, rows []any, idMaps transfer.IDMaps) (ids transfer.IDMap, err error) {
	ctx, span := telemetry.StartSpan(ctx, "transfer.import "+string(t),
		telemetry.SpanAttrCollection, string(t),
		telemetry.SpanAttrRecords, len(rows),
	)
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
			s.metrics.RecordError(ctx, string(t))
			logger.L(ctx).Warn("Import of collection failed", zap.String("collection", string(t)), zap.Error(err))
		}
		span.End()
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collection, ok := s.collections.ForType(t)
	if !ok {
		return nil, fmt.Errorf("no importer registered for %q", string(t))
	}
	records, err := transfer.AsRecords(t, rows)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ids, err = collection.Import(ctx, records, idMaps)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = transfer.IDMap{}
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrAdded, len(ids))
	s.metrics.RecordAdded(ctx, string(t), len(ids))
	logger.L(ctx).Debug("Collection imported", zap.String("collection", string(t)),
		zap.Int("records", len(records)), zap.Int("added", len(ids)),
		zap.Duration("duration", time.Since(start)))
	return ids, nil
}
