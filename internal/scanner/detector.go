package scanner

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/pkginfo/internal/archive"
)

// IsPackageName reports whether a file name looks like a pacman package.
// Detached signatures and repository databases are not packages.
func IsPackageName(name string) bool {
	base := filepath.Base(name)
	if !strings.Contains(base, ".pkg.tar") {
		return false
	}
	return !strings.HasSuffix(base, ".sig")
}

// DetectPackage determines whether path is a pacman package based on its
// name, then its compression from the magic bytes
func DetectPackage(path string) (archive.Compression, bool, error) {
	if !IsPackageName(path) {
		return archive.CompressionUnknown, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return archive.CompressionUnknown, false, err
	}
	defer f.Close()

	// Read the header for magic byte detection
	header := make([]byte, archive.HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return archive.CompressionUnknown, false, err
	}

	c := archive.DetectCompression(header[:n], path)
	if c == archive.CompressionUnknown {
		return c, false, nil
	}
	return c, true, nil
}
