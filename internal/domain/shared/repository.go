package shared

import "context"

// BulkRepository is the storage contract every transferable collection builds on:
// list everything, insert one row at a time, and wipe the table.
type BulkRepository[T any] interface {
	FindAll(ctx context.Context) ([]T, error)
	// Create persists entity and writes the assigned ID back into it.
	Create(ctx context.Context, entity *T) error
	// DeleteAll removes every row and returns the number removed.
	DeleteAll(ctx context.Context) (int64, error)
}
