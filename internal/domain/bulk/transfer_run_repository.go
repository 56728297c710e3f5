package bulk

import "context"

// TransferRunRepository persists run history
type TransferRunRepository interface {
	Save(ctx context.Context, run *TransferRun) error
	// FindRecent returns the latest runs, newest first.
	FindRecent(ctx context.Context, limit int) ([]TransferRun, error)
}
