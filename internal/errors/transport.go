package errors

import (
	stdErrors "errors"
	"fmt"
)

// TransportError represents a failed exchange with the remote catalog:
// network failure, unexpected HTTP status or an undecodable body.
type TransportError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("request to %s failed (HTTP %d): %v", e.URL, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("request to %s failed (HTTP %d)", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("request to %s failed", e.URL)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a TransportError for a request that received a response.
func NewTransportError(url string, statusCode int, err error) *TransportError {
	return &TransportError{URL: url, StatusCode: statusCode, Err: err}
}

// IsTransportError reports whether err is a TransportError (even when wrapped).
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return stdErrors.As(err, &transportErr)
}
