package serr

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// ServiceError carries an HTTP status and a client-facing message alongside the wrapped error.
// Env holds identifiers that are logged with the error but never sent to the client.
type ServiceError struct {
	Err        error
	Msg        string
	StackTrace string
	StatusCode int
	Env        map[string]string
}

func NewServiceError(err error, statusCode int, msg string, args ...any) *ServiceError {
	return &ServiceError{
		Err:        err,
		Msg:        fmt.Sprintf(msg, args...),
		StatusCode: statusCode,
		StackTrace: string(debug.Stack()),
		Env:        make(map[string]string),
	}
}

func BadRequest(err error, msg string, args ...any) *ServiceError {
	return NewServiceError(err, http.StatusBadRequest, msg, args...)
}

func NotFound(err error, msg string, args ...any) *ServiceError {
	return NewServiceError(err, http.StatusNotFound, msg, args...)
}

// With adds a key to Env and returns the same error for chaining.
func (e *ServiceError) With(key string, value any) *ServiceError {
	e.Env[key] = fmt.Sprint(value)
	return e
}

func (e *ServiceError) Error() string {
	return e.Msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
