// Package errors defines the pipeline error taxonomy and its HTTP surface.
// Every failure the analytics core reports carries a machine-readable kind
// and a human-readable message; internal details never leak into messages.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	// KindInsufficientData means a module had fewer observations than its
	// minimum (3 for sales/customer modules, 2 for inventory and forecasting).
	KindInsufficientData Kind = "insufficient_data"
	// KindInvalidDataFormat means too many records were rejected during
	// normalization to compute on the remainder.
	KindInvalidDataFormat Kind = "invalid_data_format"
	// KindUnsupportedDataType means the caller requested a processing mode
	// the pipeline does not implement.
	KindUnsupportedDataType Kind = "unsupported_data_type"
	// KindConfigurationError means a config option is out of its valid range.
	KindConfigurationError Kind = "configuration_error"
)

// Error is a classified pipeline error.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// E creates a classified error with a formatted message.
func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an existing error, keeping it as the cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

// KindOf extracts the kind of a classified error, or "" for plain errors.
func KindOf(err error) Kind {
	var perr *Error
	if stderrors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
