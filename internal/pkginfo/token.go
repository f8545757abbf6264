package pkginfo

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// TokenType represents the type of a lexer token
type TokenType uint8

const (
	TokenComment TokenType = iota
	TokenName
	TokenVersion
	TokenArch
	TokenMetadata
)

// String returns the token type name
func (t TokenType) String() string {
	switch t {
	case TokenComment:
		return "COMMENT"
	case TokenName:
		return "NAME"
	case TokenVersion:
		return "VERSION"
	case TokenArch:
		return "ARCH"
	case TokenMetadata:
		return "METADATA"
	default:
		return "UNKNOWN"
	}
}

// Token is one recognized PKGINFO line.
// Entry is only meaningful for TokenMetadata; Value is empty for TokenComment.
type Token struct {
	Type  TokenType
	Entry Entry
	Value string
	Line  int
}

// String returns a debug representation of the token
func (t Token) String() string {
	switch t.Type {
	case TokenComment:
		return t.Type.String()
	case TokenMetadata:
		return fmt.Sprintf("%s(%s, %q)", t.Type, t.Entry, t.Value)
	default:
		return fmt.Sprintf("%s(%q)", t.Type, t.Value)
	}
}

// Lexer splits PKGINFO bytes into tokens, one per recognized line.
// It stops at the first line it does not recognize and leaves that line,
// and everything after it, unconsumed.
type Lexer struct {
	input []byte
	pos   int // start of the unconsumed input
	line  int // line number at pos (1-based)
}

// NewLexer creates a new lexer for the given input
func NewLexer(input []byte) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
	}
}

// Tokenize splits data into tokens and returns the unconsumed remainder
func Tokenize(data []byte) ([]Token, []byte, error) {
	l := NewLexer(data)
	tokens, err := l.Tokenize()
	if err != nil {
		return nil, nil, err
	}
	return tokens, l.Remainder(), nil
}

// Tokenize returns all tokens up to the first unrecognized line
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for l.pos < len(l.input) {
		tok, ok, err := l.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		tokens = append(tokens, tok)
		l.skipSpace()
	}
	return tokens, nil
}

// Remainder returns the input the lexer has not consumed
func (l *Lexer) Remainder() []byte {
	return l.input[l.pos:]
}

// Line returns the line number the unconsumed input starts at
func (l *Lexer) Line() int {
	return l.line
}

// next recognizes the line at pos. The terminating newline is left for
// skipSpace.
func (l *Lexer) next() (Token, bool, error) {
	rest := l.input[l.pos:]
	end := bytes.IndexByte(rest, '\n')
	if end < 0 {
		if mayBecomeLine(rest) {
			return Token{}, false, &ParseError{Line: l.line, Err: ErrIncomplete}
		}
		return Token{}, false, nil
	}

	tok, ok, err := l.matchLine(rest[:end])
	if err != nil || !ok {
		return Token{}, false, err
	}
	l.pos += end
	return tok, true, nil
}

func (l *Lexer) matchLine(line []byte) (Token, bool, error) {
	if len(line) == 0 {
		return Token{}, false, nil
	}
	if line[0] == '#' {
		return Token{Type: TokenComment, Line: l.line}, true, nil
	}

	key, rest := splitKey(line)
	info, ok := lookupKey(string(key))
	if !ok {
		return Token{}, false, nil
	}
	value, ok := cutSeparator(rest)
	if !ok {
		return Token{}, false, nil
	}
	if !utf8.Valid(value) {
		if info.token == TokenMetadata {
			return Token{}, false, entryError(l.line, info.entry, "", ErrInvalidText)
		}
		return Token{}, false, &ParseError{Line: l.line, Err: ErrInvalidText}
	}

	return Token{
		Type:  info.token,
		Entry: info.entry,
		Value: string(value),
		Line:  l.line,
	}, true, nil
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\n':
			l.line++
		case ' ', '\t', '\r':
		default:
			return
		}
		l.pos++
	}
}

// splitKey splits a line at the first space, tab or '='
func splitKey(line []byte) (key, rest []byte) {
	i := bytes.IndexAny(line, " \t=")
	if i < 0 {
		return line, nil
	}
	return line[:i], line[i:]
}

// cutSeparator strips `[ \t]*=[ \t]*` from the front of b
func cutSeparator(b []byte) ([]byte, bool) {
	b = trimBlank(b)
	if len(b) == 0 || b[0] != '=' {
		return nil, false
	}
	return trimBlank(b[1:]), true
}

func trimBlank(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}
	return b
}

// mayBecomeLine reports whether an unterminated line could still turn
// into a recognized line once more bytes arrive.
func mayBecomeLine(partial []byte) bool {
	if partial[0] == '#' {
		return true
	}
	key, rest := splitKey(partial)
	if rest == nil {
		return isKeyPrefix(string(key))
	}
	if _, ok := lookupKey(string(key)); !ok {
		return false
	}
	rest = trimBlank(rest)
	return len(rest) == 0 || rest[0] == '='
}
