package pkginfo

import (
	"bytes"
	"errors"
)

// Result is the outcome of a parse that did not fail
type Result struct {
	// Package is nil when pkgname or pkgver was missing
	Package *Package

	// Remainder is the input left after the first unrecognized line, or empty
	Remainder []byte

	// RemainderLine is the line number Remainder starts at
	RemainderLine int
}

// Complete reports whether all input was consumed
func (r *Result) Complete() bool {
	return len(r.Remainder) == 0
}

// Parse tokenizes data and assembles the tokens into a Package.
//
// Stopping at an unrecognized line is not an error: the line and
// everything after it come back in Result.Remainder. The error is
// ErrIncomplete (test with errors.Is) when data ends inside a line, or a
// *ParseError for bad text, malformed numbers and repeated
// single-valued fields.
func Parse(data []byte) (*Result, error) {
	l := NewLexer(data)
	tokens, err := l.Tokenize()
	if err != nil {
		return nil, err
	}

	pkg, err := Assemble(tokens)
	if err != nil {
		return nil, err
	}

	return &Result{
		Package:       pkg,
		Remainder:     l.Remainder(),
		RemainderLine: l.Line(),
	}, nil
}

// ParseStrict parses data and requires both a complete record and fully
// consumed input.
func ParseStrict(data []byte) (*Package, error) {
	res, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return res.Strict()
}

// Strict converts a partial result into an error
func (r *Result) Strict() (*Package, error) {
	if !r.Complete() {
		line := r.Remainder
		if i := bytes.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		return nil, &ParseError{Line: r.RemainderLine, Value: string(line), Err: ErrUnknownKey}
	}
	if r.Package == nil {
		return nil, &ParseError{Line: r.RemainderLine, Err: ErrMissingField}
	}
	return r.Package, nil
}

// IsIncomplete reports whether err asks for more input
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}
