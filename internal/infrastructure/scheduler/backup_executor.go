package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	transferapp "github.com/storefront/backend/internal/application/transfer"
	"go.uber.org/zap"
)

// Exporter builds an export archive
type Exporter interface {
	Export(ctx context.Context, in transferapp.ExportInput) (*transferapp.ExportResult, error)
}

// ArchiveStore receives finished backup archives
type ArchiveStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
}

// BackupExecutor exports the requested collections and writes the archive
// to storage under prefix.
type BackupExecutor struct {
	exporter Exporter
	store    ArchiveStore
	prefix   string
	allTypes []string
	logger   *zap.Logger
}

// NewBackupExecutor creates a BackupExecutor. allTypes is used for jobs
// that name no collections.
func NewBackupExecutor(exporter Exporter, store ArchiveStore, prefix string, allTypes []string, logger *zap.Logger) *BackupExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackupExecutor{
		exporter: exporter,
		store:    store,
		prefix:   prefix,
		allTypes: allTypes,
		logger:   logger,
	}
}

// Execute implements JobExecutor
func (e *BackupExecutor) Execute(ctx context.Context, job *Job) error {
	types := job.Types
	if len(types) == 0 {
		types = e.allTypes
	}
	if len(types) == 0 {
		return errors.New("backup job names no collections")
	}

	result, err := e.exporter.Export(ctx, transferapp.ExportInput{
		Types:       types,
		Format:      job.Format,
		RequestedBy: "scheduler",
	})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	key := path.Join(e.prefix, result.FileName)
	if err := e.store.Put(ctx, key, bytes.NewReader(result.Data), int64(len(result.Data)), result.ContentType); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	job.Output = key

	e.logger.Debug("Backup archive stored", zap.String("key", key), zap.Int("bytes", len(result.Data)))
	return nil
}
