// Package errors defines the error taxonomy shared by the analysis engines,
// the metadata extractor and the MCP server.
//
// Every failure that crosses a package boundary is an *AppError carrying a
// Kind. The server turns the Kind into the machine-readable "code" field of
// its JSON-RPC error payload, so kinds are stable strings.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind identifies a category of failure.
type Kind string

const (
	KindMalformedFraction       Kind = "MALFORMED_FRACTION"
	KindInvalidCoordinateFormat Kind = "INVALID_COORDINATE_FORMAT"
	KindUnreadableFile          Kind = "UNREADABLE_FILE"
	KindDecodeError             Kind = "DECODE_ERROR"
	KindInvalidParameter        Kind = "INVALID_PARAMETER"
	KindFileNotFound            Kind = "FILE_NOT_FOUND"
	KindPermissionDenied        Kind = "PERMISSION_DENIED"
	KindUnsupportedFormat       Kind = "UNSUPPORTED_FORMAT"
	KindRawProcessingFailed     Kind = "RAW_PROCESSING_FAILED"
	KindTimeout                 Kind = "TIMEOUT"
	KindInternal                Kind = "INTERNAL"
)

// AppError is a structured application error.
type AppError struct {
	Kind    Kind           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key/value pair to the error and returns it.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError of the given kind.
func New(kind Kind, message string, cause error) *AppError {
	return &AppError{Kind: kind, Message: message, Cause: cause}
}

// NewMalformedFraction reports a textual number that is neither "a/b" nor a decimal.
func NewMalformedFraction(value string, cause error) *AppError {
	return New(KindMalformedFraction, fmt.Sprintf("malformed fraction %q", value), cause).
		WithDetail("value", value)
}

// NewInvalidCoordinate reports a GPS coordinate without exactly three components.
func NewInvalidCoordinate(value string) *AppError {
	return New(KindInvalidCoordinateFormat, fmt.Sprintf("invalid coordinate format %q", value), nil).
		WithDetail("value", value)
}

// NewUnreadableFile reports a file that cannot be opened or inspected.
func NewUnreadableFile(path string, cause error) *AppError {
	return New(KindUnreadableFile, "Failed to read image file", cause).WithDetail("filepath", path)
}

// NewDecodeError reports pixel data that cannot be decoded.
func NewDecodeError(path string, cause error) *AppError {
	return New(KindDecodeError, "Failed to decode image data", cause).WithDetail("filepath", path)
}

// NewInvalidParameter reports an argument outside its allowed domain.
func NewInvalidParameter(message string) *AppError {
	return New(KindInvalidParameter, message, nil)
}

// NewFileNotFound reports a path that does not exist.
func NewFileNotFound(path string) *AppError {
	return New(KindFileNotFound, fmt.Sprintf("File not found: %s", path), nil).WithDetail("filepath", path)
}

// NewPermissionDenied reports a path that exists but cannot be read.
func NewPermissionDenied(path string, cause error) *AppError {
	return New(KindPermissionDenied, fmt.Sprintf("Permission denied: %s", path), cause).WithDetail("filepath", path)
}

// NewUnsupportedFormat reports a file extension outside the supported set.
func NewUnsupportedFormat(path, ext string) *AppError {
	return New(KindUnsupportedFormat, fmt.Sprintf("Unsupported file format: %s", ext), nil).
		WithDetail("filepath", path).
		WithDetail("extension", ext)
}

// NewRawProcessingFailed reports a RAW conversion failure.
func NewRawProcessingFailed(path string, cause error) *AppError {
	return New(KindRawProcessingFailed, "RAW processing failed", cause).WithDetail("filepath", path)
}

// NewTimeout reports an analysis that exceeded its deadline.
func NewTimeout(message string, cause error) *AppError {
	return New(KindTimeout, message, cause)
}

// NewInternal reports an unexpected failure.
func NewInternal(message string, cause error) *AppError {
	return New(KindInternal, message, cause)
}

// KindOf returns the Kind of the first AppError in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err's chain contains an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// As converts err to an *AppError, wrapping non-application errors as
// KindInternal.
func As(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternal(err.Error(), err)
}

// Retryable reports whether a caller may succeed by retrying with
// different parameters.
func Retryable(kind Kind) bool {
	switch kind {
	case KindInvalidParameter, KindRawProcessingFailed, KindTimeout:
		return true
	default:
		return false
	}
}
