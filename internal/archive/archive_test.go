package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

const testPKGINFO = `# Generated by makepkg 6.1.0
pkgname = hello
pkgbase = hello
pkgver = 2.12.1-1
pkgdesc = Prints a friendly greeting
url = https://www.gnu.org/software/hello/
builddate = 1717171717
packager = Test Packager <test@example.com>
size = 184320
arch = x86_64
license = GPL-3.0-or-later
depend = glibc
`

// buildTar creates a package tarball with the given members
func buildTar(t *testing.T, members map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, name := range []string{".BUILDINFO", ".MTREE", ".PKGINFO", "usr/bin/hello"} {
		content, ok := members[name]
		if !ok {
			continue
		}
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(content))}); err != nil {
			t.Fatalf("Failed to write tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write tar member: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Failed to close tar: %v", err)
	}
	return buf.Bytes()
}

func compress(t *testing.T, data []byte, c Compression) []byte {
	t.Helper()

	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch c {
	case CompressionZstd:
		w, err = zstd.NewWriter(&buf)
	case CompressionXz:
		w, err = xz.NewWriter(&buf)
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	default:
		return data
	}
	if err != nil {
		t.Fatalf("Failed to create %s writer: %v", c, err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Failed to compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close %s writer: %v", c, err)
	}
	return buf.Bytes()
}

func TestReadPKGINFO(t *testing.T) {
	tests := []struct {
		name        string
		compression Compression
	}{
		{"hello-2.12.1-1-x86_64.pkg.tar.zst", CompressionZstd},
		{"hello-2.12.1-1-x86_64.pkg.tar.xz", CompressionXz},
		{"hello-2.12.1-1-x86_64.pkg.tar.gz", CompressionGzip},
		{"hello-2.12.1-1-x86_64.pkg.tar", CompressionNone},
	}

	tarball := buildTar(t, map[string]string{
		".BUILDINFO":    "format = 2\n",
		".PKGINFO":      testPKGINFO,
		"usr/bin/hello": "#!/bin/sh\necho hello\n",
	})

	for _, tt := range tests {
		t.Run(tt.compression.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.name)
			if err := os.WriteFile(path, compress(t, tarball, tt.compression), 0644); err != nil {
				t.Fatalf("Failed to write package: %v", err)
			}

			res, err := ReadPKGINFO(path)
			if err != nil {
				t.Fatalf("ReadPKGINFO failed: %v", err)
			}
			if !res.Complete() {
				t.Errorf("Expected complete parse, remainder: %q", res.Remainder)
			}
			if res.Package == nil {
				t.Fatal("Expected a package record")
			}
			if res.Package.Name != "hello" || res.Package.Version != "2.12.1-1" || res.Package.Arch != "x86_64" {
				t.Errorf("Unexpected identity: %s %s %s", res.Package.Name, res.Package.Version, res.Package.Arch)
			}
			if size, ok := res.Package.InstallSize(); !ok || size != 184320 {
				t.Errorf("Expected install size 184320, got %d", size)
			}
		})
	}
}

func TestReadPKGINFO_DetectsByMagicNotName(t *testing.T) {
	tarball := buildTar(t, map[string]string{".PKGINFO": testPKGINFO})
	path := filepath.Join(t.TempDir(), "hello.pkg.tar.gz")
	if err := os.WriteFile(path, compress(t, tarball, CompressionZstd), 0644); err != nil {
		t.Fatalf("Failed to write package: %v", err)
	}

	res, err := ReadPKGINFO(path)
	if err != nil {
		t.Fatalf("ReadPKGINFO failed: %v", err)
	}
	if res.Package == nil || res.Package.Name != "hello" {
		t.Errorf("Expected hello package, got %+v", res.Package)
	}
}

func TestReadPKGINFO_Missing(t *testing.T) {
	tarball := buildTar(t, map[string]string{"usr/bin/hello": "x"})
	path := filepath.Join(t.TempDir(), "broken.pkg.tar.zst")
	if err := os.WriteFile(path, compress(t, tarball, CompressionZstd), 0644); err != nil {
		t.Fatalf("Failed to write package: %v", err)
	}

	_, err := ReadPKGINFO(path)
	if !errors.Is(err, ErrNoPKGINFO) {
		t.Errorf("Expected ErrNoPKGINFO, got %v", err)
	}
}

func TestReadPKGINFO_ParseError(t *testing.T) {
	tarball := buildTar(t, map[string]string{".PKGINFO": "pkgname = a\npkgver = 1\nsize = huge\n"})
	path := filepath.Join(t.TempDir(), "bad.pkg.tar")
	if err := os.WriteFile(path, tarball, 0644); err != nil {
		t.Fatalf("Failed to write package: %v", err)
	}

	if _, err := ReadPKGINFO(path); err == nil {
		t.Error("Expected parse error for malformed size")
	}
}

func TestDetectCompression(t *testing.T) {
	tarball := buildTar(t, map[string]string{".PKGINFO": testPKGINFO})

	tests := []struct {
		name   string
		header []byte
		file   string
		want   Compression
	}{
		{"zstd magic", zstdMagic, "x", CompressionZstd},
		{"xz magic", xzMagic, "x", CompressionXz},
		{"gzip magic", gzipMagic, "x", CompressionGzip},
		{"tar magic", tarball[:HeaderSize], "x", CompressionNone},
		{"zst extension", nil, "a.pkg.tar.zst", CompressionZstd},
		{"xz extension", nil, "a.pkg.tar.xz", CompressionXz},
		{"tar extension", nil, "a.pkg.tar", CompressionNone},
		{"unknown", []byte("hello"), "a.txt", CompressionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectCompression(tt.header, tt.file); got != tt.want {
				t.Errorf("DetectCompression() = %s, want %s", got, tt.want)
			}
		})
	}
}
