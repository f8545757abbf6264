package pkginfo

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete means the input ended in the middle of a line that
	// could still be recognized. Streaming callers should retry with more
	// bytes.
	ErrIncomplete = errors.New("incomplete input")

	// ErrInvalidText is returned when a value is not valid UTF-8
	ErrInvalidText = errors.New("value is not valid UTF-8")

	// ErrMalformedNumber is returned when a size or timestamp field does not parse
	ErrMalformedNumber = errors.New("malformed numeric field")

	// ErrDuplicateField is returned when a single-valued field appears twice
	ErrDuplicateField = errors.New("duplicate single-valued field")

	// ErrUnknownKey is returned by ParseStrict when parsing stopped at an unrecognized line
	ErrUnknownKey = errors.New("unrecognized line")

	// ErrMissingField is returned by ParseStrict when pkgname or pkgver is absent
	ErrMissingField = errors.New("missing pkgname or pkgver")
)

// ParseError describes a fatal parse failure and where it happened
type ParseError struct {
	Line  int
	Entry Entry
	Value string
	Err   error

	hasEntry bool
}

// Error implements the error interface
func (e *ParseError) Error() string {
	switch {
	case e.hasEntry && e.Value != "":
		return fmt.Sprintf("line %d: %s %q: %v", e.Line, e.Entry, e.Value, e.Err)
	case e.hasEntry:
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Entry, e.Err)
	case e.Value != "":
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Value)
	default:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
}

// Unwrap returns the wrapped error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// HasEntry reports whether the error is tied to a metadata entry
func (e *ParseError) HasEntry() bool {
	return e.hasEntry
}

func entryError(line int, entry Entry, value string, err error) *ParseError {
	return &ParseError{Line: line, Entry: entry, Value: value, Err: err, hasEntry: true}
}
