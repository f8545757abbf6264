package repo

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/ralt/pkginfo/internal/models"
	"github.com/ralt/pkginfo/internal/pkginfo"
)

// generateDescFile creates the desc file content for a package, in the
// field order repo-add uses
func generateDescFile(pkg models.PackageFile) []byte {
	var buf bytes.Buffer
	info := pkg.Info

	// Write a field to the buffer
	writeField := func(name string, values ...string) {
		if len(values) == 0 || (len(values) == 1 && values[0] == "") {
			return
		}
		fmt.Fprintf(&buf, "%%%s%%\n", name)
		for _, v := range values {
			buf.WriteString(v)
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	text := func(e pkginfo.Entry) string {
		v, _ := info.Text(e)
		return v
	}

	base := text(pkginfo.EntryBase)
	if base == "" {
		base = info.Name
	}

	writeField("FILENAME", pkg.Filename)
	writeField("NAME", info.Name)
	writeField("BASE", base)
	writeField("VERSION", info.Version)
	writeField("DESC", text(pkginfo.EntryDescription))
	writeField("GROUPS", info.List(pkginfo.EntryGroups)...)
	writeField("CSIZE", strconv.FormatInt(pkg.Size, 10))
	if size, ok := info.InstallSize(); ok {
		writeField("ISIZE", strconv.FormatUint(size, 10))
	}

	// Checksums
	writeField("MD5SUM", pkg.MD5Sum)
	writeField("SHA256SUM", pkg.SHA256Sum)

	writeField("URL", text(pkginfo.EntryURL))
	writeField("LICENSE", info.List(pkginfo.EntryLicense)...)
	writeField("ARCH", info.Arch)
	if m, ok := info.Metadata[pkginfo.EntryBuildDate]; ok {
		writeField("BUILDDATE", strconv.FormatInt(m.Timestamp, 10))
	}
	writeField("PACKAGER", text(pkginfo.EntryPackager))

	// Relations
	writeField("REPLACES", info.List(pkginfo.EntryReplaces)...)
	writeField("CONFLICTS", info.List(pkginfo.EntryConflicts)...)
	writeField("PROVIDES", info.List(pkginfo.EntryProvides)...)
	writeField("DEPENDS", info.List(pkginfo.EntryDepends)...)
	writeField("OPTDEPENDS", info.List(pkginfo.EntryOptDepends)...)
	writeField("MAKEDEPENDS", info.List(pkginfo.EntryMakeDepends)...)
	writeField("CHECKDEPENDS", info.List(pkginfo.EntryCheckDepends)...)

	return buf.Bytes()
}
