package errors

import (
	"errors"
	"fmt"

	"github.com/louisbranch/emojifeedback/internal/platform/errors/i18n"
)

// DefaultLocale is the locale used when a caller names none.
const DefaultLocale = i18n.BaseLocale

// Error is a coded domain error. Two errors match under errors.Is when their
// codes are equal, so callers compare against package sentinels.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs/telemetry)
	Metadata map[string]string // Values available to i18n templates
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a domain error carrying template values.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Storage wraps an unclassified persistence failure for op.
func Storage(op string, cause error) *Error {
	return &Error{
		Code:     CodeStorageFailure,
		Message:  op,
		Metadata: map[string]string{"Operation": op},
		Cause:    cause,
	}
}

// GetCode extracts the error code from any error.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Message returns the user-facing text for err from the catalog closest to
// locale, which may be a single tag or an Accept-Language list. Errors
// without a code keep their own text.
func Message(err error, locale string) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	return i18n.GetCatalog(locale).Format(string(e.Code), e.Metadata)
}
