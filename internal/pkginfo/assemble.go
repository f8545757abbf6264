package pkginfo

import (
	"fmt"
	"strconv"
)

// Assemble folds tokens into a Package.
//
// Name, version and arch take the last value seen. List entries
// accumulate in token order; any other entry may appear only once. When
// pkgname or pkgver never appeared, Assemble returns a nil Package and a
// nil error.
func Assemble(tokens []Token) (*Package, error) {
	var (
		name, version, arch string
		haveName, haveVer   bool
	)
	metadata := make(map[Entry]Metadata)

	for _, tok := range tokens {
		switch tok.Type {
		case TokenComment:
		case TokenName:
			name, haveName = tok.Value, true
		case TokenVersion:
			version, haveVer = tok.Value, true
		case TokenArch:
			arch = tok.Value
		case TokenMetadata:
			if err := foldEntry(metadata, tok); err != nil {
				return nil, err
			}
		}
	}

	if !haveName || !haveVer {
		return nil, nil
	}

	return &Package{
		Name:     name,
		Version:  version,
		Arch:     arch,
		Metadata: metadata,
	}, nil
}

func foldEntry(metadata map[Entry]Metadata, tok Token) error {
	existing, ok := metadata[tok.Entry]
	if ok {
		if existing.Kind != KindList {
			return entryError(tok.Line, tok.Entry, tok.Value, ErrDuplicateField)
		}
		existing.List = append(existing.List, tok.Value)
		metadata[tok.Entry] = existing
		return nil
	}

	value, err := newMetadata(tok.Entry, tok.Value)
	if err != nil {
		return entryError(tok.Line, tok.Entry, tok.Value, err)
	}
	metadata[tok.Entry] = value
	return nil
}

// newMetadata builds the first value of an entry according to its kind
func newMetadata(e Entry, raw string) (Metadata, error) {
	switch e.Kind() {
	case KindSize:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Metadata{}, fmt.Errorf("%w: %w", ErrMalformedNumber, err)
		}
		return SizeValue(n), nil
	case KindTimestamp:
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Metadata{}, fmt.Errorf("%w: %w", ErrMalformedNumber, err)
		}
		return TimestampValue(ts), nil
	case KindList:
		return ListValue(raw), nil
	default:
		return TextValue(raw), nil
	}
}
