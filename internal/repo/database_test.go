package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/pkginfo/internal/models"
	"github.com/ralt/pkginfo/internal/pkginfo"
)

func TestReadDatabase(t *testing.T) {
	info := testInfo("foo", "1.0-1", "x86_64")
	info.Metadata[pkginfo.EntryBase] = pkginfo.TextValue("foo-base")
	info.Metadata[pkginfo.EntryURL] = pkginfo.TextValue("https://example.com")
	info.Metadata[pkginfo.EntryLicense] = pkginfo.ListValue("MIT", "Apache-2.0")
	info.Metadata[pkginfo.EntryBuildDate] = pkginfo.TimestampValue(1700000000)
	info.Metadata[pkginfo.EntryInstallSize] = pkginfo.SizeValue(4096)
	info.Metadata[pkginfo.EntryDepends] = pkginfo.ListValue("glibc", "zlib")
	info.Metadata[pkginfo.EntryCheckDepends] = pkginfo.ListValue("bats")

	want := models.PackageFile{
		Info:      info,
		Filename:  "foo-1.0-1-x86_64.pkg.tar.zst",
		Size:      1234,
		MD5Sum:    "md5",
		SHA256Sum: "sha256",
	}

	dbData, err := generateDatabase([]models.PackageFile{want})
	if err != nil {
		t.Fatalf("Failed to generate database: %v", err)
	}
	dbPath := filepath.Join(t.TempDir(), "custom.db.tar.zst")
	if err := os.WriteFile(dbPath, dbData, 0644); err != nil {
		t.Fatalf("Failed to write database: %v", err)
	}

	packages, err := ReadDatabase(dbPath)
	if err != nil {
		t.Fatalf("ReadDatabase failed: %v", err)
	}
	if len(packages) != 1 {
		t.Fatalf("Expected 1 package, got %d", len(packages))
	}

	got := packages[0]
	if !got.Info.Equal(want.Info) {
		t.Errorf("Package metadata mismatch:\ngot  %+v\nwant %+v", got.Info, want.Info)
	}
	if got.Filename != want.Filename || got.Size != want.Size || got.MD5Sum != want.MD5Sum || got.SHA256Sum != want.SHA256Sum {
		t.Errorf("File information mismatch: %+v", got)
	}
}

func TestReadDatabase_Missing(t *testing.T) {
	if _, err := ReadDatabase(filepath.Join(t.TempDir(), "none.db.tar.zst")); !os.IsNotExist(err) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}

func TestParseDescFile_MissingName(t *testing.T) {
	if _, err := parseDescFile([]byte("%VERSION%\n1-1\n\n")); err == nil {
		t.Error("Expected error for desc without NAME")
	}
}

func TestBuildIncremental(t *testing.T) {
	tmpDir := t.TempDir()
	outDir := filepath.Join(tmpDir, "repo")
	config := &models.RepositoryConfig{OutputDir: outDir, RepoName: "test", Incremental: true}

	build := func(name, pkginfoContent string) {
		t.Helper()
		path := writePackage(t, t.TempDir(), name, pkginfoContent)
		pkg, err := LoadPackage(path, true)
		if err != nil {
			t.Fatalf("LoadPackage failed: %v", err)
		}
		if err := NewBuilder(nil).Build(context.Background(), config, []models.PackageFile{*pkg}); err != nil {
			t.Fatalf("Build failed: %v", err)
		}
	}

	versions := func() map[string]string {
		t.Helper()
		packages, err := ReadDatabase(filepath.Join(outDir, DefaultArch, "test.db.tar.zst"))
		if err != nil {
			t.Fatalf("ReadDatabase failed: %v", err)
		}
		v := make(map[string]string)
		for _, pkg := range packages {
			v[pkg.Info.Name] = pkg.Info.Version
		}
		return v
	}

	build("a", "pkgname = a\npkgver = 1.0-1\narch = x86_64\n")
	build("b", "pkgname = b\npkgver = 1.0-1\narch = x86_64\n")

	got := versions()
	if len(got) != 2 || got["a"] != "1.0-1" || got["b"] != "1.0-1" {
		t.Fatalf("Expected a and b in database, got %v", got)
	}

	build("a", "pkgname = a\npkgver = 2.0-1\narch = x86_64\n")

	got = versions()
	if len(got) != 2 || got["a"] != "2.0-1" {
		t.Errorf("Expected a to be replaced by 2.0-1, got %v", got)
	}
}

func TestMergePackages(t *testing.T) {
	existing := []models.PackageFile{
		{Info: testInfo("zlib", "1.3-1", "x86_64"), Filename: "zlib.pkg.tar.zst"},
		{Info: testInfo("foo", "1.0-1", "x86_64"), Filename: "foo-old.pkg.tar.zst"},
	}
	incoming := []models.PackageFile{
		{Info: testInfo("foo", "1.1-1", "x86_64"), Filename: "foo-new.pkg.tar.zst"},
		{Info: testInfo("bar", "1.0-1", "x86_64"), Filename: "bar.pkg.tar.zst"},
	}

	merged := mergePackages(existing, incoming)

	want := []string{"bar.pkg.tar.zst", "foo-new.pkg.tar.zst", "zlib.pkg.tar.zst"}
	if len(merged) != len(want) {
		t.Fatalf("Expected %d packages, got %d", len(want), len(merged))
	}
	for i, pkg := range merged {
		if pkg.Filename != want[i] {
			t.Errorf("merged[%d] = %s, want %s", i, pkg.Filename, want[i])
		}
	}
}
