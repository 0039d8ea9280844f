package backend

import "fmt"

// StatusError is returned when the backend answers with a non-200 status.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s returned status %d", e.Endpoint, e.StatusCode)
}

// DecodeError is returned when a backend response doesn't match the
// expected schema.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("backend %s returned a malformed response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
