package repository

import (
	"context"

	"support-logbook/internal/model"
)

// RecordRepository is the interface for task record persistence.
// The store is append-only: records are never updated or deleted.
type RecordRepository interface {
	// Insert stores one record and assigns its ID and timestamp.
	Insert(ctx context.Context, opt InsertOptions) (model.TaskRecord, error)

	// List returns records matching the filter, newest first.
	List(ctx context.Context, opt ListOptions) ([]model.TaskRecord, error)
}
