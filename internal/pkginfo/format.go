package pkginfo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrUnencodable is returned when a value cannot be written so that it
// parses back unchanged.
var ErrUnencodable = errors.New("value cannot be written as PKGINFO")

// formatOrder is the order makepkg writes fields in
var formatOrder = []Entry{
	EntryBase,
	EntryDescription,
	EntryURL,
	EntryBuildDate,
	EntryPackager,
	EntryInstallSize,
	// arch goes here
	EntryLicense,
	EntryReplaces,
	EntryGroups,
	EntryConflicts,
	EntryProvides,
	EntryBackups,
	EntryDepends,
	EntryOptDepends,
	EntryMakeDepends,
	EntryCheckDepends,
	EntryBuildOptions,
	EntryBuildDirectory,
	EntryBuildEnvironment,
	EntryBuildInstalled,
	EntrySHA256Sum,
}

// Format writes pkg in PKGINFO syntax. Parsing the output yields a
// Package equal to pkg.
func Format(pkg *Package) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := pkg.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo implements io.WriterTo
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	// Write a line to the buffer
	writeLine := func(key, value string) error {
		if strings.ContainsRune(value, '\n') || strings.HasPrefix(value, " ") || strings.HasPrefix(value, "\t") {
			return fmt.Errorf("%w: %s = %q", ErrUnencodable, key, value)
		}
		fmt.Fprintf(&buf, "%s = %s\n", key, value)
		return nil
	}

	if err := writeLine("pkgname", p.Name); err != nil {
		return 0, err
	}
	if m, ok := p.Metadata[EntryBase]; ok {
		if err := writeLine(EntryBase.Key(), m.Text); err != nil {
			return 0, err
		}
	}
	if err := writeLine("pkgver", p.Version); err != nil {
		return 0, err
	}

	for _, e := range formatOrder {
		if e == EntryLicense && p.Arch != "" {
			if err := writeLine("arch", p.Arch); err != nil {
				return 0, err
			}
		}
		m, ok := p.Metadata[e]
		if !ok || e == EntryBase {
			continue
		}
		if m.Kind != e.Kind() {
			return 0, fmt.Errorf("%w: %s holds a %s value", ErrUnencodable, e, m.Kind)
		}
		for _, v := range m.strings() {
			if err := writeLine(e.Key(), v); err != nil {
				return 0, err
			}
		}
	}

	return buf.WriteTo(w)
}

func (m Metadata) strings() []string {
	switch m.Kind {
	case KindText:
		return []string{m.Text}
	case KindSize:
		return []string{strconv.FormatUint(m.Size, 10)}
	case KindTimestamp:
		return []string{strconv.FormatInt(m.Timestamp, 10)}
	default:
		return m.List
	}
}
