package bulk

import (
	"errors"
	"testing"

	"github.com/storefront/backend/internal/domain/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferRun_CompleteImport(t *testing.T) {
	t.Run("without errors", func(t *testing.T) {
		run := NewImportRun("export.json", "application/json", true, false, "1")
		report := transfer.NewReport()
		report.RecordDeleted(transfer.Settings, 2, nil)
		report.RecordAdded(transfer.Settings, transfer.IDMap{1: 1}, nil)
		report.RecordAdded(transfer.Users, transfer.IDMap{1: 1, 2: 2}, nil)

		require.NoError(t, run.CompleteImport(report))
		assert.Equal(t, RunStatusCompleted, run.Status)
		assert.Equal(t, []string{"settings", "users"}, run.Collections)
		assert.Equal(t, 3, run.Added)
		assert.Equal(t, int64(2), run.Deleted)
		assert.NotNil(t, run.FinishedAt)
	})

	t.Run("with errors is partial", func(t *testing.T) {
		run := NewImportRun("export.json", "application/json", false, false, "")
		report := transfer.NewReport()
		report.RecordAdded(transfer.Pages, nil, errors.New("test error"))

		require.NoError(t, run.CompleteImport(report))
		assert.Equal(t, RunStatusPartial, run.Status)
		assert.Equal(t, []string{"test error"}, run.Errors)
	})

	t.Run("cannot finish twice", func(t *testing.T) {
		run := NewImportRun("a.json", "application/json", false, false, "")
		require.NoError(t, run.Fail(errors.New("boom")))
		assert.Error(t, run.CompleteImport(transfer.NewReport()))
		assert.Equal(t, RunStatusFailed, run.Status)
	})
}

func TestTransferRun_Export(t *testing.T) {
	run := NewExportRun("csv", []string{"settings"}, "1")
	require.NoError(t, run.CompleteExport("export-2024-01-01T00:00:00Z.tar.gz"))

	assert.Equal(t, RunKindExport, run.Kind)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Equal(t, "export-2024-01-01T00:00:00Z.tar.gz", run.FileName)
	assert.GreaterOrEqual(t, run.Duration().Nanoseconds(), int64(0))
}
