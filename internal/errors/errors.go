package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the credibuy console
var (
	// Session errors
	ErrNoRefreshToken  = errors.New("no refresh token available")
	ErrRefreshRejected = errors.New("refresh token rejected")
	ErrUnauthorized    = errors.New("unauthorized")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Input errors
	ErrValidation = errors.New("validation failed")

	// General errors
	ErrNotFound = errors.New("not found")
)

// StatusError is a non-2xx answer from the credibuy API.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets a 401 match ErrUnauthorized and a 404 match ErrNotFound.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// UnauthorizedError is returned when a 401 could not be recovered by refreshing the session.
type UnauthorizedError struct {
	Cause error
}

func (e *UnauthorizedError) Error() string {
	if e.Cause == nil {
		return ErrUnauthorized.Error()
	}
	return fmt.Sprintf("%s: %s", ErrUnauthorized, e.Cause)
}

func (e *UnauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

func (e *UnauthorizedError) Unwrap() error {
	return e.Cause
}

// FieldErrors maps a form field to a human readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	return fmt.Sprintf("%s: %d invalid field(s)", ErrValidation, len(f))
}

func (f FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New is errors.New, re-exported so callers need a single errors import
func New(text string) error {
	return errors.New(text)
}
