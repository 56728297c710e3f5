package transferapp

import (
	"context"

	"github.com/storefront/backend/internal/domain/bulk"
)

// MaxHistoryLimit caps how many runs one history query returns
const MaxHistoryLimit = 100

// HistoryService lists past import and export runs
type HistoryService struct {
	repo         bulk.TransferRunRepository
	defaultLimit int
}

// NewHistoryService creates a new HistoryService. A non-positive
// defaultLimit falls back to 20.
func NewHistoryService(repo bulk.TransferRunRepository, defaultLimit int) *HistoryService {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &HistoryService{repo: repo, defaultLimit: defaultLimit}
}

// Limit returns the page size Recent applies for a requested limit
func (s *HistoryService) Limit(requested int) int {
	switch {
	case requested <= 0:
		return s.defaultLimit
	case requested > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return requested
}

// Recent returns the newest runs first
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]bulk.TransferRun, error) {
	return s.repo.FindRecent(ctx, s.Limit(limit))
}
