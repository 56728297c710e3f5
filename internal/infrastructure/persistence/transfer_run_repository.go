package persistence

import (
	"context"

	"github.com/storefront/backend/internal/domain/bulk"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransferRunRepository implements bulk.TransferRunRepository using GORM
type GormTransferRunRepository struct {
	db *gorm.DB
}

// NewGormTransferRunRepository creates a new GormTransferRunRepository
func NewGormTransferRunRepository(db *gorm.DB) *GormTransferRunRepository {
	return &GormTransferRunRepository{db: db}
}

var _ bulk.TransferRunRepository = (*GormTransferRunRepository)(nil)

// Save inserts a new run or updates an existing one, writing the ID back
func (r *GormTransferRunRepository) Save(ctx context.Context, run *bulk.TransferRun) error {
	model := &models.TransferRunModel{}
	model.FromDomain(run)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return translateError(err)
	}
	run.ID = model.ID
	return nil
}

// FindRecent returns up to limit runs, newest first
func (r *GormTransferRunRepository) FindRecent(ctx context.Context, limit int) ([]bulk.TransferRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.TransferRunModel
	if err := r.db.WithContext(ctx).
		Order("started_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	runs := make([]bulk.TransferRun, 0, len(rows))
	for i := range rows {
		runs = append(runs, *rows[i].ToDomain())
	}
	return runs, nil
}
