package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/bulk"
)

// TransferRunModel is the persistence model for import/export history.
type TransferRunModel struct {
	BaseModel
	Kind        bulk.RunKind   `gorm:"type:varchar(10);not null;index"`
	FileName    string         `gorm:"type:varchar(255)"`
	Format      string         `gorm:"type:varchar(20)"`
	Clear       bool           `gorm:"not null"`
	NoImport    bool           `gorm:"not null"`
	Collections []string       `gorm:"serializer:json;type:text"`
	Added       int            `gorm:"not null"`
	Deleted     int64          `gorm:"not null"`
	Errors      []string       `gorm:"serializer:json;type:text"`
	Status      bulk.RunStatus `gorm:"type:varchar(20);not null"`
	RequestedBy string         `gorm:"type:varchar(255)"`
	StartedAt   time.Time      `gorm:"not null;index"`
	FinishedAt  *time.Time
}

// TableName returns the table name for GORM
func (TransferRunModel) TableName() string {
	return "transfer_runs"
}

// ToDomain converts the persistence model to a domain TransferRun.
func (m *TransferRunModel) ToDomain() *bulk.TransferRun {
	return &bulk.TransferRun{
		ID:          m.ID,
		Kind:        m.Kind,
		FileName:    m.FileName,
		Format:      m.Format,
		Clear:       m.Clear,
		NoImport:    m.NoImport,
		Collections: m.Collections,
		Added:       m.Added,
		Deleted:     m.Deleted,
		Errors:      m.Errors,
		Status:      m.Status,
		RequestedBy: m.RequestedBy,
		StartedAt:   m.StartedAt,
		FinishedAt:  m.FinishedAt,
	}
}

// FromDomain populates the persistence model from a domain TransferRun.
func (m *TransferRunModel) FromDomain(r *bulk.TransferRun) {
	m.ID = r.ID
	m.Kind = r.Kind
	m.FileName = r.FileName
	m.Format = r.Format
	m.Clear = r.Clear
	m.NoImport = r.NoImport
	m.Collections = r.Collections
	m.Added = r.Added
	m.Deleted = r.Deleted
	m.Errors = r.Errors
	m.Status = r.Status
	m.RequestedBy = r.RequestedBy
	m.StartedAt = r.StartedAt
	m.FinishedAt = r.FinishedAt
}

// AllModels lists every table in dependency order, for AutoMigrate in tests and sqlite setups.
func AllModels() []any {
	return []any{
		&SettingModel{},
		&UserModel{},
		&ProductModel{},
		&ProductPhotoModel{},
		&CategoryModel{},
		&CategoryProductModel{},
		&AttributeTypeModel{},
		&DeliveryMethodModel{},
		&PaymentMethodModel{},
		&OrderModel{},
		&OrderItemModel{},
		&ReturnModel{},
		&WishlistModel{},
		&WishlistProductModel{},
		&PageModel{},
		&TransferRunModel{},
	}
}
