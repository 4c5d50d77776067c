package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrAssetMissing      = errors.New("asset missing")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("Validation Error")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Detail  string // Optional: source locator or column name
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// SourceUnavailable reports a data source that could not be fetched or
// parsed. Fatal to the whole render: the dashboard never shows partial data.
func SourceUnavailable(locator string, cause error) *AppError {
	return &AppError{
		Err:     ErrSourceUnavailable,
		Message: fmt.Sprintf("data source %s unavailable: %v", locator, cause),
		Detail:  locator,
	}
}

// SchemaMismatch reports a required column missing from a source export.
// Failing here, with the column named, beats a wrong chart downstream.
func SchemaMismatch(locator, column string) *AppError {
	return &AppError{
		Err:     ErrSchemaMismatch,
		Message: fmt.Sprintf("source %s is missing required column %q", locator, column),
		Detail:  column,
	}
}

// AssetMissing reports an optional display asset that could not be loaded.
// Recovered locally: the rest of the page still renders.
func AssetMissing(name string, cause error) *AppError {
	return &AppError{
		Err:     ErrAssetMissing,
		Message: fmt.Sprintf("asset %s could not be loaded: %v", name, cause),
		Detail:  name,
	}
}

// Unauthorized reports a failed or absent login. The client shows a retry
// prompt, nothing more.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Detail:  field,
	}
}
