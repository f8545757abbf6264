package repo

import (
	"archive/tar"
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ralt/pkginfo/internal/archive"
	"github.com/ralt/pkginfo/internal/models"
	"github.com/ralt/pkginfo/internal/pkginfo"
	"github.com/sirupsen/logrus"
)

// descLists maps list-valued desc sections to their PKGINFO entries
var descLists = map[string]pkginfo.Entry{
	"GROUPS":       pkginfo.EntryGroups,
	"LICENSE":      pkginfo.EntryLicense,
	"REPLACES":     pkginfo.EntryReplaces,
	"CONFLICTS":    pkginfo.EntryConflicts,
	"PROVIDES":     pkginfo.EntryProvides,
	"DEPENDS":      pkginfo.EntryDepends,
	"OPTDEPENDS":   pkginfo.EntryOptDepends,
	"MAKEDEPENDS":  pkginfo.EntryMakeDepends,
	"CHECKDEPENDS": pkginfo.EntryCheckDepends,
}

// descTexts maps text-valued desc sections to their PKGINFO entries
var descTexts = map[string]pkginfo.Entry{
	"BASE":     pkginfo.EntryBase,
	"DESC":     pkginfo.EntryDescription,
	"URL":      pkginfo.EntryURL,
	"PACKAGER": pkginfo.EntryPackager,
}

// ReadDatabase reads the package entries of an existing sync database.
// Filenames in the result are relative to the database directory.
func ReadDatabase(path string) ([]models.PackageFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := make([]byte, archive.HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	rc, err := archive.Open(f, archive.DetectCompression(header[:n], path))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var packages []models.PackageFile
	tr := tar.NewReader(rc)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read database %s: %w", path, err)
		}

		// Each package has a directory with desc file
		if header.Typeflag != tar.TypeReg || !strings.HasSuffix(header.Name, "/desc") {
			continue
		}

		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}

		pkg, err := parseDescFile(data)
		if err != nil {
			logrus.WithField("entry", header.Name).Warnf("Skipping database entry: %v", err)
			continue
		}
		packages = append(packages, *pkg)
	}

	return packages, nil
}

// parseDescFile is the inverse of generateDescFile
func parseDescFile(data []byte) (*models.PackageFile, error) {
	sections := make(map[string][]string)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	var current string
	for scanner.Scan() {
		line := scanner.Text()

		// Field marker: %FIELDNAME%
		if len(line) > 2 && strings.HasPrefix(line, "%") && strings.HasSuffix(line, "%") {
			current = strings.Trim(line, "%")
			continue
		}
		if line == "" {
			current = ""
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	first := func(name string) string {
		if v := sections[name]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	info := &pkginfo.Package{
		Name:     first("NAME"),
		Version:  first("VERSION"),
		Arch:     first("ARCH"),
		Metadata: make(map[pkginfo.Entry]pkginfo.Metadata),
	}
	if info.Name == "" || info.Version == "" {
		return nil, pkginfo.ErrMissingField
	}

	for name, e := range descTexts {
		if v, ok := sections[name]; ok {
			info.Metadata[e] = pkginfo.TextValue(v[0])
		}
	}
	for name, e := range descLists {
		if v, ok := sections[name]; ok {
			info.Metadata[e] = pkginfo.ListValue(v...)
		}
	}

	if v := first("ISIZE"); v != "" {
		size, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ISIZE: %w", err)
		}
		info.Metadata[pkginfo.EntryInstallSize] = pkginfo.SizeValue(size)
	}
	if v := first("BUILDDATE"); v != "" {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid BUILDDATE: %w", err)
		}
		info.Metadata[pkginfo.EntryBuildDate] = pkginfo.TimestampValue(ts)
	}

	pkg := &models.PackageFile{
		Info:      info,
		Filename:  first("FILENAME"),
		MD5Sum:    first("MD5SUM"),
		SHA256Sum: first("SHA256SUM"),
	}
	if v := first("CSIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CSIZE: %w", err)
		}
		pkg.Size = size
	}
	if pkg.Filename == "" {
		return nil, fmt.Errorf("%s has no FILENAME", pkg.DirName())
	}

	return pkg, nil
}

// loadExisting returns the packages of the current database in archDir
// whose files are still present. A missing database yields no packages.
func loadExisting(archDir, dbName string) ([]models.PackageFile, error) {
	existing, err := ReadDatabase(filepath.Join(archDir, dbName+".db.tar.zst"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	kept := existing[:0]
	for _, pkg := range existing {
		path := filepath.Join(archDir, filepath.Base(pkg.Filename))
		if _, err := os.Stat(path); err != nil {
			logrus.Warnf("Dropping %s from database: %v", pkg.DirName(), err)
			continue
		}
		pkg.Filename = path
		kept = append(kept, pkg)
	}

	logrus.Infof("Found %d existing packages in %s", len(kept), archDir)
	return kept, nil
}

// mergePackages replaces existing packages by name with incoming ones.
// The result is sorted by name.
func mergePackages(existing, incoming []models.PackageFile) []models.PackageFile {
	byName := make(map[string]models.PackageFile, len(existing)+len(incoming))
	for _, pkg := range existing {
		byName[pkg.Info.Name] = pkg
	}
	for _, pkg := range incoming {
		if old, ok := byName[pkg.Info.Name]; ok && old.Info.Version != pkg.Info.Version {
			logrus.Infof("Replacing %s with %s", old.DirName(), pkg.DirName())
		}
		byName[pkg.Info.Name] = pkg
	}

	merged := make([]models.PackageFile, 0, len(byName))
	for _, pkg := range byName {
		merged = append(merged, pkg)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Info.Name < merged[j].Info.Name
	})
	return merged
}
