package repository

import (
	"errors"
	"time"

	"support-logbook/internal/model"
)

// Sentinel errors for repository implementations.
var (
	ErrFailedToInsert = errors.New("failed to insert record")
	ErrFailedToQuery  = errors.New("failed to query records")
)

// InsertOptions holds the parameters for inserting one task record.
// The timestamp is assigned by the store, never supplied by callers.
type InsertOptions struct {
	Author    string
	Category  model.Category
	Reference string
	Duration  string
}

// ListOptions holds the filters for listing task records.
// Zero values mean "no filter" for that dimension.
type ListOptions struct {
	Author string    // filter by author, empty = all authors
	From   time.Time // inclusive lower bound on CreatedAt
	To     time.Time // exclusive upper bound on CreatedAt
}
