package core

import "errors"

// Common errors.
var (
	ErrNotFound         = errors.New("note not found")
	ErrDuplicateID      = errors.New("note id already in use")
	ErrInvalidID        = errors.New("note id must be a positive integer")
	ErrEmptyContent     = errors.New("note content cannot be empty")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrReadOnly         = errors.New("store is in read-only mode")
)
