package common

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// Caller input which is malformed and can be rejected without touching the store.
	ErrInvalidArgument = "ERR_INVALID_ARGUMENT"
	// An internal consistency failure, usually a schema mapping defect.
	ErrInvalidOperation = "ERR_INVALID_OPERATION"
	ErrPermissionDenied = "ERR_PERMISSION_DENIED"
)

// RuntimeError is the error type returned to callers of the query runtime.
type RuntimeError struct {
	Code    string
	Message string
}

func (r RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

func NewInvalidArgumentError(format string, args ...any) RuntimeError {
	return RuntimeError{
		Code:    ErrInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewInvalidOperationError(format string, args ...any) RuntimeError {
	return RuntimeError{
		Code:    ErrInvalidOperation,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewPermissionError() RuntimeError {
	return RuntimeError{
		Code:    ErrPermissionDenied,
		Message: "not authorized to access this resource",
	}
}

// IsCode reports whether err is a RuntimeError with the given code.
func IsCode(err error, code string) bool {
	var runtimeErr RuntimeError
	if errors.As(err, &runtimeErr) {
		return runtimeErr.Code == code
	}
	return false
}

// HTTPStatus maps an error onto the status code a protocol layer should
// respond with.
func HTTPStatus(err error) int {
	var runtimeErr RuntimeError
	if !errors.As(err, &runtimeErr) {
		return http.StatusInternalServerError
	}

	switch runtimeErr.Code {
	case ErrInvalidArgument:
		return http.StatusBadRequest
	case ErrPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
