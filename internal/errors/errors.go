package errors

import (
	"errors"
	"fmt"
	"time"
)

// Error types for classgrep
type ErrorType string

const (
	// Search pipeline errors
	ErrorTypeMaterialization ErrorType = "materialization"
	ErrorTypeResolution      ErrorType = "resolution"
	ErrorTypeSearch          ErrorType = "search"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

var (
	// ErrNoMetadata reports that a unit has no position metadata
	ErrNoMetadata = errors.New("no position metadata")

	// ErrEmptyPattern reports a search pattern that can match nothing useful
	ErrEmptyPattern = errors.New("empty search pattern")

	// ErrUnknownSession reports a search session id that does not exist or expired
	ErrUnknownSession = errors.New("unknown search session")

	// ErrBinaryContent reports source text that is not text
	ErrBinaryContent = errors.New("binary content")
)

// MaterializationError reports that a unit's text could not be produced.
// The unit is skipped; the search continues.
type MaterializationError struct {
	Type        ErrorType
	Unit        string
	Path        string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewMaterializationError creates a new materialization error for a unit
func NewMaterializationError(unit string, err error) *MaterializationError {
	return &MaterializationError{
		Type:        ErrorTypeMaterialization,
		Unit:        unit,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// WithPath adds the backing source path to the error
func (e *MaterializationError) WithPath(path string) *MaterializationError {
	e.Path = path
	return e
}

// WithRecoverable marks whether a later attempt may succeed
func (e *MaterializationError) WithRecoverable(recoverable bool) *MaterializationError {
	e.Recoverable = recoverable
	return e
}

// Error implements the error interface
func (e *MaterializationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s of %s (%s) failed: %v", e.Type, e.Unit, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s of %s failed: %v", e.Type, e.Unit, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *MaterializationError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable checks if the error can be retried
func (e *MaterializationError) IsRecoverable() bool {
	return e.Recoverable
}

// ResolutionError reports that the enclosing construct of an offset could not be found
type ResolutionError struct {
	Type       ErrorType
	Unit       string
	Offset     int
	Underlying error
	Timestamp  time.Time
}

// NewResolutionError creates a new resolution error
func NewResolutionError(unit string, offset int, err error) *ResolutionError {
	return &ResolutionError{
		Type:       ErrorTypeResolution,
		Unit:       unit,
		Offset:     offset,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s of offset %d in %s failed: %v", e.Type, e.Offset, e.Unit, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ResolutionError) Unwrap() error {
	return e.Underlying
}

// SearchError represents a search operation error
type SearchError struct {
	Type       ErrorType
	Pattern    string
	Underlying error
	Timestamp  time.Time
}

// NewSearchError creates a new search error
func NewSearchError(pattern string, err error) *SearchError {
	return &SearchError{
		Type:       ErrorTypeSearch,
		Pattern:    pattern,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for pattern %q: %v", e.Pattern, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SearchError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewFileTooLargeError creates a file error for a file over the configured size limit
func NewFileTooLargeError(path string, size, limit int64) *FileError {
	return &FileError{
		Type:       ErrorTypeFileTooLarge,
		Path:       path,
		Operation:  "read",
		Underlying: fmt.Errorf("%d bytes exceeds limit of %d", size, limit),
		Timestamp:  time.Now(),
	}
}

// isPermissionError checks if the error is a permission error
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// Is, As and New re-export the standard helpers so callers importing this
// package under its own name keep access to them.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)
