package errors

import (
	stdErrors "errors"
	"fmt"
)

// NotFoundError is returned when the remote catalog confirms that a book does not exist.
// Retrying cannot change the outcome.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("book %d not found", e.ID)
}

// NewNotFoundError creates a NotFoundError for the given book id
func NewNotFoundError(id int) *NotFoundError {
	return &NotFoundError{ID: id}
}

// IsNotFoundError reports whether err is a NotFoundError (even when wrapped).
func IsNotFoundError(err error) bool {
	var notFound *NotFoundError
	return stdErrors.As(err, &notFound)
}
