// Package pkginfo parses the .PKGINFO metadata file that makepkg embeds
// in pacman packages.
//
// Parsing happens in two steps: a Lexer turns bytes into one Token per
// recognized line, stopping at the first line it does not recognize, and
// Assemble folds those tokens into a Package. Parse runs both.
package pkginfo

import (
	"slices"
	"time"
)

// Metadata is the value of a metadata entry. Only the field selected by
// Kind is meaningful.
type Metadata struct {
	Kind      ValueKind
	Text      string
	Size      uint64
	Timestamp int64
	List      []string
}

// TextValue creates a text metadata value
func TextValue(s string) Metadata {
	return Metadata{Kind: KindText, Text: s}
}

// SizeValue creates a size metadata value
func SizeValue(n uint64) Metadata {
	return Metadata{Kind: KindSize, Size: n}
}

// TimestampValue creates a timestamp metadata value
func TimestampValue(ts int64) Metadata {
	return Metadata{Kind: KindTimestamp, Timestamp: ts}
}

// ListValue creates a list metadata value
func ListValue(items ...string) Metadata {
	return Metadata{Kind: KindList, List: items}
}

// Equal reports whether two values have the same kind and content
func (m Metadata) Equal(other Metadata) bool {
	if m.Kind != other.Kind {
		return false
	}
	switch m.Kind {
	case KindText:
		return m.Text == other.Text
	case KindSize:
		return m.Size == other.Size
	case KindTimestamp:
		return m.Timestamp == other.Timestamp
	default:
		return slices.Equal(m.List, other.List)
	}
}

// Package is the metadata record parsed from a PKGINFO file
type Package struct {
	Name     string
	Version  string
	Arch     string
	Metadata map[Entry]Metadata
}

// Text returns the value of a text entry
func (p *Package) Text(e Entry) (string, bool) {
	m, ok := p.Metadata[e]
	if !ok || m.Kind != KindText {
		return "", false
	}
	return m.Text, true
}

// List returns the values of a list entry, or nil if absent
func (p *Package) List(e Entry) []string {
	m, ok := p.Metadata[e]
	if !ok || m.Kind != KindList {
		return nil
	}
	return m.List
}

// InstallSize returns the installed size in bytes
func (p *Package) InstallSize() (uint64, bool) {
	m, ok := p.Metadata[EntryInstallSize]
	if !ok {
		return 0, false
	}
	return m.Size, true
}

// BuildDate returns the build time in UTC
func (p *Package) BuildDate() (time.Time, bool) {
	m, ok := p.Metadata[EntryBuildDate]
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(m.Timestamp, 0).UTC(), true
}

// Equal reports whether two packages hold the same record
func (p *Package) Equal(other *Package) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.Name != other.Name || p.Version != other.Version || p.Arch != other.Arch {
		return false
	}
	if len(p.Metadata) != len(other.Metadata) {
		return false
	}
	for e, m := range p.Metadata {
		o, ok := other.Metadata[e]
		if !ok || !m.Equal(o) {
			return false
		}
	}
	return true
}
