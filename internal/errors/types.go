package errors

import (
	"fmt"
)

// ErrorType categorizes failures so outcomes and logs can discriminate
// between transport problems, conformance violations, and tooling faults.
type ErrorType string

const (
	// Transport failure categories. A probe makes exactly one attempt, so
	// each request error maps to exactly one of these.
	ErrorTypeTimeout          ErrorType = "timeout"
	ErrorTypeTooManyRedirects ErrorType = "too_many_redirects"
	ErrorTypeConnection       ErrorType = "connection"
	ErrorTypeRequest          ErrorType = "request"

	// Conformance violation categories raised by response validation.
	ErrorTypeCORS     ErrorType = "cors"
	ErrorTypeJSONBody ErrorType = "json_body"
	ErrorTypeSchema   ErrorType = "schema"

	// Tooling categories.
	ErrorTypeAuth     ErrorType = "auth"
	ErrorTypeCatalog  ErrorType = "catalog"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeMCP      ErrorType = "mcp"
	ErrorTypeInternal ErrorType = "internal"
)

// ProbeError is a structured error with a category, optional context and an
// optional cause.
type ProbeError struct {
	Type    ErrorType
	Message string
	Context map[string]interface{}
	Cause   error
}

// Error implements the error interface
func (e *ProbeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Cause.Error())
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping
func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// Is matches errors by category so errors.Is can test for a failure class.
func (e *ProbeError) Is(target error) bool {
	if targetErr, ok := target.(*ProbeError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *ProbeError) WithContext(key string, value interface{}) *ProbeError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new ProbeError
func New(errType ErrorType, message string) *ProbeError {
	return &ProbeError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Newf creates a new ProbeError with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *ProbeError {
	return New(errType, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a category and message
func Wrap(err error, errType ErrorType, message string) *ProbeError {
	return &ProbeError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
		Cause:   err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *ProbeError {
	return Wrap(err, errType, fmt.Sprintf(format, args...))
}

// IsType checks if an error is of a specific category
func IsType(err error, errType ErrorType) bool {
	if pErr, ok := err.(*ProbeError); ok {
		return pErr.Type == errType
	}
	return false
}

// GetType returns the error category, or ErrorTypeInternal if not a ProbeError
func GetType(err error) ErrorType {
	if pErr, ok := err.(*ProbeError); ok {
		return pErr.Type
	}
	return ErrorTypeInternal
}

// GetContext returns context information from the error
func GetContext(err error) map[string]interface{} {
	if pErr, ok := err.(*ProbeError); ok {
		return pErr.Context
	}
	return nil
}
