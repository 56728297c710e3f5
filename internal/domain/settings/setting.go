// Package settings holds store-wide configuration values editable by administrators.
package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// SettingType describes how a setting value is interpreted
type SettingType string

const (
	SettingTypeBoolean  SettingType = "boolean"
	SettingTypeString   SettingType = "string"
	SettingTypeNumber   SettingType = "number"
	SettingTypeCurrency SettingType = "currency"
)

// IsValid checks if the setting type is valid
func (t SettingType) IsValid() bool {
	switch t {
	case SettingTypeBoolean, SettingTypeString, SettingTypeNumber, SettingTypeCurrency:
		return true
	}
	return false
}

// Setting is a named configuration value. Builtin settings ship with the store.
type Setting struct {
	ID           uint
	Name         string
	Builtin      bool
	Type         SettingType
	DefaultValue string
	Value        string
}

// NewSetting creates a setting
func NewSetting(name string, settingType SettingType, defaultValue, value string, builtin bool) (*Setting, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Setting name cannot be empty")
	}
	if !settingType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SETTING_TYPE", fmt.Sprintf("Invalid setting type: %s", settingType))
	}
	return &Setting{
		Name:         name,
		Builtin:      builtin,
		Type:         settingType,
		DefaultValue: defaultValue,
		Value:        value,
	}, nil
}

// Repository persists settings
type Repository interface {
	shared.BulkRepository[Setting]
	// FindByName returns shared.ErrNotFound when no setting has that name.
	FindByName(ctx context.Context, name string) (*Setting, error)
	Update(ctx context.Context, setting *Setting) error
}
