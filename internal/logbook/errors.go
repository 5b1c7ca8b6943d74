package logbook

import "errors"

// Domain-specific errors for the logbook package.
var (
	ErrUnknownCategory  = errors.New("unknown task category")
	ErrInvalidDuration  = errors.New("invalid duration text")
	ErrEmptyReference   = errors.New("reference is empty")
	ErrEmptyAuthor      = errors.New("author is empty")
	ErrStoreUnavailable = errors.New("record store unavailable")
)
