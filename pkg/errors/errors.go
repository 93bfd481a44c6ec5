package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies scraper failures per their handling policy
type ErrorType string

const (
	// ErrorTypeElementNotFound: an optional download link is absent.
	// Expected; the file type is simply unavailable for that row.
	ErrorTypeElementNotFound ErrorType = "element_not_found"
	// ErrorTypeTimeout: a download marker did not clear in time.
	// Soft failure for that file only.
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeFilesystem: scan or move failed while organizing files.
	ErrorTypeFilesystem ErrorType = "filesystem"
	// ErrorTypeNavigation: browser launch or page load failed.
	// Aborts the current page or the whole run.
	ErrorTypeNavigation ErrorType = "navigation"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error carries a failure classification alongside the message
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error
func New(t ErrorType, message string) *Error {
	return &Error{Type: t, Message: message}
}

// Wrap classifies an underlying error
func Wrap(t ErrorType, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

// IsFatal reports whether an error type aborts the run rather than
// just the current file or row
func IsFatal(t ErrorType) bool {
	return t == ErrorTypeNavigation
}

// IsType reports whether err is a classified error of the given type
func IsType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// TypeOf returns the classification of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}
