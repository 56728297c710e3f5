package models

import (
	"github.com/storefront/backend/internal/domain/settings"
)

// SettingModel is the persistence model for a store setting.
type SettingModel struct {
	BaseModel
	Name         string               `gorm:"type:varchar(100);not null;uniqueIndex"`
	Builtin      bool                 `gorm:"not null;default:false"`
	Type         settings.SettingType `gorm:"type:varchar(20);not null"`
	DefaultValue string               `gorm:"type:text;not null;default:''"`
	Value        string               `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (SettingModel) TableName() string {
	return "settings"
}

// ToDomain converts the persistence model to a domain Setting.
func (m *SettingModel) ToDomain() *settings.Setting {
	return &settings.Setting{
		ID:           m.ID,
		Name:         m.Name,
		Builtin:      m.Builtin,
		Type:         m.Type,
		DefaultValue: m.DefaultValue,
		Value:        m.Value,
	}
}

// FromDomain populates the persistence model from a domain Setting.
func (m *SettingModel) FromDomain(s *settings.Setting) {
	m.ID = s.ID
	m.Name = s.Name
	m.Builtin = s.Builtin
	m.Type = s.Type
	m.DefaultValue = s.DefaultValue
	m.Value = s.Value
}
