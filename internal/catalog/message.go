package catalog

import (
	"context"
	"errors"

	apperrors "github.com/lepinkainen/folio/internal/errors"
)

// Describe turns a fetch error into a short message suitable for display
// next to a retry action.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case apperrors.IsNotFoundError(err):
		return "Book not found."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Request cancelled."
	case apperrors.IsTransportError(err):
		return "Could not reach the book catalog. Please try again."
	default:
		return err.Error()
	}
}
