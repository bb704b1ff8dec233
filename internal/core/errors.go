package core

import (
	"errors"
	"fmt"
)

// Domain errors. Services wrap them with context; callers test with errors.Is.
var (
	ErrInvalidInput              = errors.New("invalid input")
	ErrNotFound                  = errors.New("not found")
	ErrUpstreamUnavailable       = errors.New("upstream unavailable")
	ErrMalformedUpstreamResponse = errors.New("malformed upstream response")
)

// ValidationError carries a client-facing message for rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
