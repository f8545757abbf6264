package pkginfo

// Entry identifies one of the recognized PKGINFO metadata fields
type Entry uint8

const (
	EntryBase Entry = iota
	EntryDescription
	EntryURL
	EntryBuildDate
	EntryPackager
	EntryInstallSize
	EntryGroups
	EntryLicense
	EntryReplaces
	EntryDepends
	EntryConflicts
	EntryProvides
	EntryOptDepends
	EntryMakeDepends
	EntryCheckDepends
	EntryBackups
	EntryBuildOptions
	EntryBuildDirectory
	EntryBuildEnvironment
	EntrySHA256Sum
	EntryBuildInstalled

	numEntries
)

// ValueKind is the shape of the value an Entry holds
type ValueKind uint8

const (
	KindText ValueKind = iota
	KindSize
	KindTimestamp
	KindList
)

// String returns the string representation of ValueKind
func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindSize:
		return "size"
	case KindTimestamp:
		return "timestamp"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

var entryNames = [numEntries]string{
	EntryBase:             "Base",
	EntryDescription:      "Description",
	EntryURL:              "Url",
	EntryBuildDate:        "BuildDate",
	EntryPackager:         "Packager",
	EntryInstallSize:      "InstallSize",
	EntryGroups:           "Groups",
	EntryLicense:          "License",
	EntryReplaces:         "Replaces",
	EntryDepends:          "Depends",
	EntryConflicts:        "Conflicts",
	EntryProvides:         "Provides",
	EntryOptDepends:       "OptDepends",
	EntryMakeDepends:      "MakeDepends",
	EntryCheckDepends:     "CheckDepends",
	EntryBackups:          "Backups",
	EntryBuildOptions:     "BuildOptions",
	EntryBuildDirectory:   "BuildDirectory",
	EntryBuildEnvironment: "BuildEnvironment",
	EntrySHA256Sum:        "SHA256Sum",
	EntryBuildInstalled:   "BuildInstalled",
}

// String returns the string representation of Entry
func (e Entry) String() string {
	if e >= numEntries {
		return "Unknown"
	}
	return entryNames[e]
}

// Kind returns the fixed value kind of the entry
func (e Entry) Kind() ValueKind {
	switch e {
	case EntryInstallSize:
		return KindSize
	case EntryBuildDate:
		return KindTimestamp
	case EntryBase, EntryDescription, EntryURL, EntryPackager,
		EntryBuildDirectory, EntrySHA256Sum:
		return KindText
	default:
		return KindList
	}
}

// Key returns the literal written for the entry in a PKGINFO file.
// BuildOptions is accepted as both "makepkgopt" and "options"; the
// former is what current makepkg writes.
func (e Entry) Key() string {
	for _, k := range keyTable {
		if k.token == TokenMetadata && k.entry == e {
			return k.literal
		}
	}
	return ""
}

// Entries returns every recognized entry in declaration order
func Entries() []Entry {
	entries := make([]Entry, 0, numEntries)
	for e := Entry(0); e < numEntries; e++ {
		entries = append(entries, e)
	}
	return entries
}

type keyInfo struct {
	literal string
	token   TokenType
	entry   Entry
}

// keyTable is the closed set of keys the lexer recognizes, in match order.
var keyTable = []keyInfo{
	{literal: "pkgname", token: TokenName},
	{literal: "pkgver", token: TokenVersion},
	{literal: "arch", token: TokenArch},
	{literal: "pkgbase", token: TokenMetadata, entry: EntryBase},
	{literal: "pkgdesc", token: TokenMetadata, entry: EntryDescription},
	{literal: "url", token: TokenMetadata, entry: EntryURL},
	{literal: "builddate", token: TokenMetadata, entry: EntryBuildDate},
	{literal: "packager", token: TokenMetadata, entry: EntryPackager},
	{literal: "size", token: TokenMetadata, entry: EntryInstallSize},
	{literal: "group", token: TokenMetadata, entry: EntryGroups},
	{literal: "license", token: TokenMetadata, entry: EntryLicense},
	{literal: "replaces", token: TokenMetadata, entry: EntryReplaces},
	{literal: "depend", token: TokenMetadata, entry: EntryDepends},
	{literal: "conflict", token: TokenMetadata, entry: EntryConflicts},
	{literal: "provides", token: TokenMetadata, entry: EntryProvides},
	{literal: "optdepend", token: TokenMetadata, entry: EntryOptDepends},
	{literal: "makedepend", token: TokenMetadata, entry: EntryMakeDepends},
	{literal: "checkdepend", token: TokenMetadata, entry: EntryCheckDepends},
	{literal: "backup", token: TokenMetadata, entry: EntryBackups},
	{literal: "makepkgopt", token: TokenMetadata, entry: EntryBuildOptions},
	{literal: "options", token: TokenMetadata, entry: EntryBuildOptions},
	{literal: "builddir", token: TokenMetadata, entry: EntryBuildDirectory},
	{literal: "buildenv", token: TokenMetadata, entry: EntryBuildEnvironment},
	{literal: "pkgbuild_sha256sum", token: TokenMetadata, entry: EntrySHA256Sum},
	{literal: "installed", token: TokenMetadata, entry: EntryBuildInstalled},
}

func lookupKey(literal string) (keyInfo, bool) {
	for _, k := range keyTable {
		if k.literal == literal {
			return k, true
		}
	}
	return keyInfo{}, false
}

// isKeyPrefix reports whether s is a prefix of some recognized key
func isKeyPrefix(s string) bool {
	for _, k := range keyTable {
		if len(s) <= len(k.literal) && k.literal[:len(s)] == s {
			return true
		}
	}
	return false
}
