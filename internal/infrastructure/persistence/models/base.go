package models

import (
	"cmp"
	"slices"
)

// BaseModel is the auto-increment primary key shared by every table.
type BaseModel struct {
	ID uint `gorm:"primaryKey;autoIncrement"`
}

// PrimaryKey returns the row ID
func (m *BaseModel) PrimaryKey() uint {
	return m.ID
}

func uintPtr(v *uint) *uint {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// sortedByPosition returns a stably sorted copy; link tables keep the imported list order.
func sortedByPosition[T any](links []T, position func(T) int) []T {
	out := slices.Clone(links)
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp.Compare(position(a), position(b))
	})
	return out
}
