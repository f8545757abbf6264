package pkginfo

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const makepkgOutput = `# Generated by makepkg 5.0.1
# using fakeroot version 1.21
# Sun Oct 30 16:09:47 UTC 2016
pkgname = repose-git
pkgver = 6.2.10.gbab93f3-1
pkgdesc = A archlinux repo building tool
url = http://github.com/vodik/repose
builddate = 1477843787
packager = Simon Gomizelj <simongmzlj@gmail.com>
size = 63488
arch = x86_64
license = GPL
conflict = repose
provides = repose
depend = pacman
depend = libarchive
depend = gnupg
makedepend = git
makedepend = ragel
`

func TestParse_MakepkgOutput(t *testing.T) {
	res, err := Parse([]byte(makepkgOutput))
	require.NoError(t, err)
	assert.True(t, res.Complete())

	want := &Package{
		Name:    "repose-git",
		Version: "6.2.10.gbab93f3-1",
		Arch:    "x86_64",
		Metadata: map[Entry]Metadata{
			EntryInstallSize: SizeValue(63488),
			EntryConflicts:   ListValue("repose"),
			EntryProvides:    ListValue("repose"),
			EntryDepends:     ListValue("pacman", "libarchive", "gnupg"),
			EntryURL:         TextValue("http://github.com/vodik/repose"),
			EntryLicense:     ListValue("GPL"),
			EntryDescription: TextValue("A archlinux repo building tool"),
			EntryPackager:    TextValue("Simon Gomizelj <simongmzlj@gmail.com>"),
			EntryBuildDate:   TimestampValue(1477843787),
			EntryMakeDepends: ListValue("git", "ragel"),
		},
	}
	assert.Equal(t, want, res.Package)

	built, ok := res.Package.BuildDate()
	require.True(t, ok)
	assert.Equal(t, time.Date(2016, time.October, 30, 16, 9, 47, 0, time.UTC), built)
}

func TestParse_Backup(t *testing.T) {
	input := "pkgname = test-backup\npkgver = 1\narch = any\nbackup = etc/example/conf\n"

	res, err := Parse([]byte(input))
	require.NoError(t, err)
	assert.True(t, res.Complete())
	assert.Equal(t, &Package{
		Name:     "test-backup",
		Version:  "1",
		Arch:     "any",
		Metadata: map[Entry]Metadata{EntryBackups: ListValue("etc/example/conf")},
	}, res.Package)
}

func TestParse_Makepkgopt(t *testing.T) {
	input := "pkgname = test-makepkgopts\npkgver = 1\nmakepkgopt = strip\nmakepkgopt = !debug\n"

	res, err := Parse([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"strip", "!debug"}, res.Package.List(EntryBuildOptions))
}

func TestParse_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      *Package
		remainder string
	}{
		{
			name:  "minimal",
			input: "pkgname = foo\npkgver = 1\n",
			want:  &Package{Name: "foo", Version: "1", Metadata: map[Entry]Metadata{}},
		},
		{
			name:  "repeated depend",
			input: "pkgname = a\npkgver = 1\ndepend = x\ndepend = y\n",
			want: &Package{Name: "a", Version: "1", Metadata: map[Entry]Metadata{
				EntryDepends: ListValue("x", "y"),
			}},
		},
		{
			name:  "size is an integer",
			input: "pkgname = a\npkgver = 1\nsize = 63488\n",
			want: &Package{Name: "a", Version: "1", Metadata: map[Entry]Metadata{
				EntryInstallSize: SizeValue(63488),
			}},
		},
		{
			name:      "unknown key",
			input:     "pkgname = a\npkgver = 1\nbadkey = z\n",
			want:      &Package{Name: "a", Version: "1", Metadata: map[Entry]Metadata{}},
			remainder: "badkey = z\n",
		},
		{
			name:  "empty url",
			input: "pkgname = a\npkgver = 1\nurl =\n",
			want: &Package{Name: "a", Version: "1", Metadata: map[Entry]Metadata{
				EntryURL: TextValue(""),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Package)
			assert.Equal(t, tt.remainder, string(res.Remainder))
		})
	}
}

func TestParse_DefaultArch(t *testing.T) {
	res, err := Parse([]byte("pkgname = a\npkgver = 1\nlicense = MIT\n"))
	require.NoError(t, err)
	assert.Equal(t, "", res.Package.Arch)
}

func TestParse_MissingRequiredField(t *testing.T) {
	inputs := []string{
		"pkgver = 1\ndepend = x\nsize = 10\n",
		"pkgname = a\ndepend = x\nurl = https://example.com\n",
		"# only a comment\n",
		"",
	}

	for _, input := range inputs {
		res, err := Parse([]byte(input))
		require.NoError(t, err)
		assert.Nil(t, res.Package, input)
		assert.True(t, res.Complete(), input)
	}
}

func TestParse_RemainderStartsAtUnknownLine(t *testing.T) {
	input := "pkgname = a\n\npkgver = 1\n# comment\nxdata = pkgtype=pkg\nsize = 1\n"

	res, err := Parse([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "xdata = pkgtype=pkg\nsize = 1\n", string(res.Remainder))
	assert.Equal(t, 5, res.RemainderLine)
	_, ok := res.Package.InstallSize()
	assert.False(t, ok)
}

func TestParse_FatalErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"bad size", "pkgname = a\npkgver = 1\nsize = 12k\n", ErrMalformedNumber},
		{"bad builddate", "pkgname = a\npkgver = 1\nbuilddate = now\n", ErrMalformedNumber},
		{"duplicate url", "pkgname = a\npkgver = 1\nurl = x\nurl = y\n", ErrDuplicateField},
		{"invalid text", "pkgname = \xc3\x28\npkgver = 1\n", ErrInvalidText},
		{"incomplete", "pkgname = a\npkgver = 1", ErrIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse([]byte(tt.input))
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseStrict(t *testing.T) {
	pkg, err := ParseStrict([]byte(makepkgOutput))
	require.NoError(t, err)
	assert.Equal(t, "repose-git", pkg.Name)

	_, err = ParseStrict([]byte("pkgname = a\npkgver = 1\nbadentry = etc/example/conf\n"))
	require.ErrorIs(t, err, ErrUnknownKey)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.Line)
	assert.Equal(t, "badentry = etc/example/conf", perr.Value)

	_, err = ParseStrict([]byte("pkgname = a\n"))
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestParse_IndependentCallsInParallel(t *testing.T) {
	inputs := []string{
		makepkgOutput,
		"pkgname = a\npkgver = 1\ndepend = x\ndepend = y\n",
		"pkgname = b\npkgver = 2\nsize = 7\n",
	}

	for _, input := range inputs {
		input := input
		t.Run("", func(t *testing.T) {
			t.Parallel()
			for i := 0; i < 50; i++ {
				res, err := Parse([]byte(input))
				require.NoError(t, err)
				require.NotNil(t, res.Package)
			}
		})
	}
}
