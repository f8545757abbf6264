package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ralt/pkginfo/internal/pkginfo"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

// PKGINFOName is the archive member holding package metadata
const PKGINFOName = ".PKGINFO"

// ErrNoPKGINFO is returned when an archive has no .PKGINFO member
var ErrNoPKGINFO = errors.New(".PKGINFO not found in package")

// Compression identifies how a package tarball is compressed
type Compression int

const (
	CompressionUnknown Compression = iota
	CompressionNone
	CompressionZstd
	CompressionXz
	CompressionGzip
)

// String returns the string representation of Compression
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionXz:
		return "xz"
	case CompressionGzip:
		return "gzip"
	default:
		return "unknown"
	}
}

// Magic bytes for compression detection
var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	xzMagic   = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	gzipMagic = []byte{0x1F, 0x8B}

	// POSIX tar "ustar" magic lives at offset 257
	tarMagic       = []byte("ustar")
	tarMagicOffset = 257
)

// HeaderSize is how many leading bytes DetectCompression looks at
const HeaderSize = 512

// DetectCompression determines the compression of a package from its
// leading bytes, falling back to the file name
func DetectCompression(header []byte, name string) Compression {
	switch {
	case bytes.HasPrefix(header, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(header, xzMagic):
		return CompressionXz
	case bytes.HasPrefix(header, gzipMagic):
		return CompressionGzip
	case len(header) >= tarMagicOffset+len(tarMagic) &&
		bytes.Equal(header[tarMagicOffset:tarMagicOffset+len(tarMagic)], tarMagic):
		return CompressionNone
	}

	base := filepath.Base(name)
	switch {
	case strings.HasSuffix(base, ".tar.zst"):
		return CompressionZstd
	case strings.HasSuffix(base, ".tar.xz"):
		return CompressionXz
	case strings.HasSuffix(base, ".tar.gz"):
		return CompressionGzip
	case strings.HasSuffix(base, ".tar"):
		return CompressionNone
	}
	return CompressionUnknown
}

// Open wraps r with a decompressor for c
func Open(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case CompressionXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case CompressionGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return gr, nil
	case CompressionNone:
		return io.NopCloser(r), nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

// ReadPKGINFO extracts and parses the .PKGINFO of a package archive
func ReadPKGINFO(path string) (*pkginfo.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	c := DetectCompression(header[:n], path)
	logrus.WithField("package", filepath.Base(path)).Debugf("Detected %s compression", c)

	return DecodePKGINFO(f, c)
}

// DecodePKGINFO finds .PKGINFO in a compressed tar stream and parses it
func DecodePKGINFO(r io.Reader, c Compression) (*pkginfo.Result, error) {
	rc, err := Open(r, c)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	tr := tar.NewReader(rc)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if strings.TrimPrefix(header.Name, "./") == PKGINFOName {
			res, err := pkginfo.NewDecoder(tr).Decode()
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", PKGINFOName, err)
			}
			return res, nil
		}
	}

	return nil, ErrNoPKGINFO
}
