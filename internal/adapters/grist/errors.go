package grist

import (
	"errors"
	"fmt"
)

// apiError represents a non-2xx answer from the Grist API.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("grist: %s (status %d)", e.Message, e.StatusCode)
}

type ClientError struct {
	Message string
	Err     error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("grist client: %s: %v", e.Message, e.Err)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// IsAPIError reports whether err came from Grist answering with an error status,
// as opposed to Grist not being reachable at all.
func IsAPIError(err error) bool {
	var ae *apiError
	return errors.As(err, &ae)
}
