package transferapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/backend/internal/domain/settings"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/transfer"
)

type settingRecord struct {
	ID           uint   `json:"id" validate:"required"`
	Name         string `json:"name" validate:"required,max=100"`
	Builtin      bool   `json:"builtin"`
	Type         string `json:"type" validate:"required"`
	DefaultValue string `json:"defaultValue"`
	Value        string `json:"value"`
}

// SettingsCollection transfers store settings. Importing a setting whose
// name already exists overwrites it in place.
type SettingsCollection struct {
	repo settings.Repository
}

// Export implements transfer.Exporter
func (c *SettingsCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, s := range all {
		out = append(out, transfer.Record{
			"id":           s.ID,
			"name":         s.Name,
			"builtin":      s.Builtin,
			"type":         string(s.Type),
			"defaultValue": s.DefaultValue,
			"value":        s.Value,
		})
	}
	return out, nil
}

// Import implements transfer.Importer
func (c *SettingsCollection) Import(ctx context.Context, records []transfer.Record, _ transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[settingRecord](transfer.Settings, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		setting, err := settings.NewSetting(row.Name, settings.SettingType(row.Type), row.DefaultValue, row.Value, row.Builtin)
		if err != nil {
			return nil, transfer.NewParseError(transfer.Settings, i, err)
		}

		existing, err := c.repo.FindByName(ctx, setting.Name)
		switch {
		case err == nil:
			setting.ID = existing.ID
			if err := c.repo.Update(ctx, setting); err != nil {
				return nil, fmt.Errorf("update setting %q: %w", setting.Name, err)
			}
		case errors.Is(err, shared.ErrNotFound):
			if err := c.repo.Create(ctx, setting); err != nil {
				return nil, fmt.Errorf("create setting %q: %w", setting.Name, err)
			}
		default:
			return nil, err
		}
		ids[row.ID] = setting.ID
	}
	return ids, nil
}

// Clear implements transfer.Importer
func (c *SettingsCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAll(ctx)
}
