package client

import (
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status int
	Detail string
	Issues []string
}

func (e *APIError) Error() string {
	return e.Detail
}

// Retryable reports whether the failure is on the server side.
func (e *APIError) Retryable() bool {
	return e.Status >= http.StatusInternalServerError
}

// NetworkError wraps transport failures. Its message is deliberately generic;
// the cause is kept for logs via Unwrap.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return "unable to reach the server"
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is returned when a 2xx body does not match the
// expected result type.
type MalformedResponseError struct {
	Path string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %v", e.Path, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}
