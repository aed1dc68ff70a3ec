// Package errz defines the errors reported while reading compiled classes.
package errz

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrMalformed indicates bytes that do not form a valid structure.
	ErrMalformed ErrorKind = iota
	// ErrTruncated indicates input that ended in the middle of a structure.
	ErrTruncated
	// ErrUnsupported indicates a valid structure this package cannot handle.
	ErrUnsupported
	// ErrDecrypt indicates a payload that could not be decrypted.
	ErrDecrypt
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrMalformed:
		return "malformed class"
	case ErrTruncated:
		return "truncated class"
	case ErrUnsupported:
		return "unsupported class"
	case ErrDecrypt:
		return "decrypt error"
	default:
		return "error"
	}
}

// Location identifies where in an archive an error occurred.
type Location struct {
	// Entry is the archive path of the class, if known.
	Entry string
	// Offset is the byte offset inside the entry, or -1.
	Offset int
}

// String returns "entry@offset", omitting the parts that are unknown.
func (l Location) String() string {
	switch {
	case l.Entry != "" && l.Offset >= 0:
		return fmt.Sprintf("%s@%d", l.Entry, l.Offset)
	case l.Entry != "":
		return l.Entry
	case l.Offset >= 0:
		return fmt.Sprintf("@%d", l.Offset)
	default:
		return ""
	}
}

// StructuredError is an error with a kind and a location.
type StructuredError struct {
	Message  string
	Kind     ErrorKind
	Location Location
	Cause    error
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if loc := e.Location.String(); loc != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, loc)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// NewStructuredErrorf creates a new StructuredError with a formatted message.
func NewStructuredErrorf(kind ErrorKind, offset int, format string, args ...any) *StructuredError {
	return &StructuredError{
		Message:  fmt.Sprintf(format, args...),
		Kind:     kind,
		Location: Location{Offset: offset},
	}
}

// WithCause wraps the error with a cause.
func (e *StructuredError) WithCause(cause error) *StructuredError {
	e.Cause = cause
	return e
}

// WithEntry records the archive entry the error belongs to.
func (e *StructuredError) WithEntry(entry string) *StructuredError {
	e.Location.Entry = entry
	return e
}

// KindOf returns the kind of the first StructuredError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}
