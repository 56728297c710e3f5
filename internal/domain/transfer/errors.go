package transfer

import (
	"errors"
	"fmt"
)

// GenericError reports an archive-level problem. It aborts the whole import
// before any collection is cleared or imported.
type GenericError struct {
	Message string
}

// NewGenericError creates a GenericError
func NewGenericError(message string) *GenericError {
	return &GenericError{Message: message}
}

// Error implements the error interface
func (e *GenericError) Error() string {
	return e.Message
}

// ParseError reports a record that does not have the shape its collection expects.
type ParseError struct {
	Collection DataType
	Index      int
	Err        error
}

// NewParseError creates a ParseError for record index of collection
func NewParseError(collection DataType, index int, err error) *ParseError {
	return &ParseError{Collection: collection, Index: index, Err: err}
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("%q record #%d: %v", string(e.Collection), e.Index, e.Err)
}

// Unwrap returns the underlying cause
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsGenericError reports whether err is or wraps a GenericError
func IsGenericError(err error) bool {
	var ge *GenericError
	return errors.As(err, &ge)
}

// IsParseError reports whether err is or wraps a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
