package errors

import (
	stdErrors "errors"
	"fmt"
)

// StorageError represents a failed read or write against durable local storage.
// It never crosses the wishlist or preference store boundary; the stores log it
// and fall back to their default state.
type StorageError struct {
	Op  string // "read", "write", "decode", "encode", "remove"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a StorageError
func NewStorageError(op, key string, err error) *StorageError {
	return &StorageError{Op: op, Key: key, Err: err}
}

// IsStorageError reports whether err is a StorageError (even when wrapped).
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return stdErrors.As(err, &storageErr)
}
