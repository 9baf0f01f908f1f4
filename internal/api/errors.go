package api

import (
	"errors"
	"fmt"
)

// ErrEmptyName is returned by RenameSession when the supplied name is empty after
// trimming. The request is never sent in that case.
var ErrEmptyName = errors.New("session name is empty")

// NetworkError indicates the request could not be sent or its response could not be
// read. The remote API may or may not have seen the request.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError indicates the remote API answered with a non-success status code.
type ServerError struct {
	Op         string
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server returned status %d", e.Op, e.StatusCode)
}

// APIError indicates the remote API answered the request but signalled a logical
// failure in the response body, such as the error field on a chat response.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}
