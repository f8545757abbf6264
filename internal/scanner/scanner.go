package scanner

import (
	"context"

	"github.com/ralt/pkginfo/internal/archive"
)

// ScannedPackage represents a package file found during scanning
type ScannedPackage struct {
	Path        string
	Compression archive.Compression
	Size        int64
}

// Scanner interface for finding package archives
type Scanner interface {
	// Scan recursively scans a directory for packages
	Scan(ctx context.Context, dir string) ([]ScannedPackage, error)

	// Detect reports whether a file is a pacman package and how it is compressed
	Detect(path string) (archive.Compression, bool, error)
}
