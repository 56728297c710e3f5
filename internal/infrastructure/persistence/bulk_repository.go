package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// domainModel is a GORM model pointer that converts to and from its domain entity T
type domainModel[T any, M any] interface {
	*M
	ToDomain() *T
	FromDomain(*T)
	PrimaryKey() uint
}

// bulkOptions tunes a GormBulkRepository
type bulkOptions struct {
	preloads   []string
	dependents []any
}

// BulkOption configures a GormBulkRepository
type BulkOption func(*bulkOptions)

// WithPreload loads the named associations on FindAll.
func WithPreload(associations ...string) BulkOption {
	return func(o *bulkOptions) {
		o.preloads = append(o.preloads, associations...)
	}
}

// WithDependents deletes rows of the given child models before the parent table on DeleteAll.
func WithDependents(models ...any) BulkOption {
	return func(o *bulkOptions) {
		o.dependents = append(o.dependents, models...)
	}
}

// GormBulkRepository implements shared.BulkRepository for one table using GORM
type GormBulkRepository[T any, M any, PM domainModel[T, M]] struct {
	db   *gorm.DB
	opts bulkOptions
}

// NewGormBulkRepository creates a repository for domain type T stored as model M.
func NewGormBulkRepository[T any, M any, PM domainModel[T, M]](db *gorm.DB, opts ...BulkOption) *GormBulkRepository[T, M, PM] {
	r := &GormBulkRepository[T, M, PM]{db: db}
	for _, opt := range opts {
		opt(&r.opts)
	}
	return r
}

// FindAll returns every row ordered by ID
func (r *GormBulkRepository[T, M, PM]) FindAll(ctx context.Context) ([]T, error) {
	query := r.db.WithContext(ctx).Order("id ASC")
	for _, assoc := range r.opts.preloads {
		query = query.Preload(assoc)
	}

	var rows []M
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for i := range rows {
		out = append(out, *PM(&rows[i]).ToDomain())
	}
	return out, nil
}

// Create inserts entity and its owned associations, then writes the stored
// state (ID and timestamps) back into entity.
func (r *GormBulkRepository[T, M, PM]) Create(ctx context.Context, entity *T) error {
	var row M
	model := PM(&row)
	model.FromDomain(entity)

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	*entity = *model.ToDomain()
	return nil
}

// DeleteAll removes every row, dependents first, in one transaction.
func (r *GormBulkRepository[T, M, PM]) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx = tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, dep := range r.opts.dependents {
			if err := tx.Delete(dep).Error; err != nil {
				return err
			}
		}
		var row M
		res := tx.Delete(PM(&row))
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// translateError maps driver errors GORM translated into domain errors
func translateError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", shared.ErrAlreadyExists, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: referenced record does not exist", shared.ErrInvalidInput)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	default:
		return err
	}
}
