package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ralt/pkginfo/internal/archive"
	"github.com/ralt/pkginfo/internal/models"
	"github.com/ralt/pkginfo/internal/pkginfo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var strict, raw bool

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print the metadata of a package or .PKGINFO file",
		Long: `Reads a pacman package archive (.pkg.tar, .pkg.tar.zst, .pkg.tar.xz,
.pkg.tar.gz) or a bare .PKGINFO file and prints its metadata.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkg, err := loadShowPackage(args[0], strict)
			if err != nil {
				return err
			}

			if raw {
				_, err := pkg.WriteTo(cmd.OutOrStdout())
				return err
			}
			return printPackage(cmd.OutOrStdout(), pkg, time.Now())
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on unrecognized .PKGINFO lines")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the metadata in .PKGINFO syntax")

	return cmd
}

func loadShowPackage(path string, strict bool) (*pkginfo.Package, error) {
	res, err := readResult(path)
	if err != nil {
		return nil, &models.ToolError{Type: models.ErrPackageParse, Package: path, Err: err}
	}

	if strict {
		pkg, err := res.Strict()
		if err != nil {
			return nil, &models.ToolError{Type: models.ErrPackageParse, Package: path, Err: err}
		}
		return pkg, nil
	}

	if res.Package == nil {
		return nil, &models.ToolError{Type: models.ErrPackageParse, Package: path, Err: pkginfo.ErrMissingField}
	}
	if !res.Complete() {
		logrus.WithFields(logrus.Fields{
			"file": filepath.Base(path),
			"line": res.RemainderLine,
		}).Warn("Ignoring unrecognized .PKGINFO lines")
	}
	return res.Package, nil
}

// readResult parses path as a package archive, or as a bare .PKGINFO
// when no archive format is recognized
func readResult(path string) (*pkginfo.Result, error) {
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

	c := archive.DetectCompression(header[:n], path)
	if c == archive.CompressionUnknown {
		logrus.Debugf("Reading %s as a bare %s", path, archive.PKGINFOName)
		return pkginfo.NewDecoder(f).Decode()
	}

	logrus.Debugf("Reading %s as a %s package archive", path, c)
	return archive.DecodePKGINFO(f, c)
}

func printPackage(w io.Writer, pkg *pkginfo.Package, now time.Time) error {
	var b strings.Builder

	field := func(label, value string) {
		fmt.Fprintf(&b, "%-18s: %s\n", label, value)
	}

	field("Name", pkg.Name)
	field("Version", pkg.Version)
	if pkg.Arch != "" {
		field("Architecture", pkg.Arch)
	}

	for _, e := range pkginfo.Entries() {
		m, ok := pkg.Metadata[e]
		if !ok {
			continue
		}

		switch m.Kind {
		case pkginfo.KindText:
			field(e.String(), m.Text)
		case pkginfo.KindSize:
			field(e.String(), fmt.Sprintf("%s (%d bytes)", humanize.IBytes(m.Size), m.Size))
		case pkginfo.KindTimestamp:
			t := time.Unix(m.Timestamp, 0).UTC()
			field(e.String(), fmt.Sprintf("%s (%s)", t.Format(time.RFC3339), humanize.RelTime(t, now, "ago", "from now")))
		case pkginfo.KindList:
			if len(m.List) == 0 {
				field(e.String(), "None")
				continue
			}
			field(e.String(), m.List[0])
			for _, v := range m.List[1:] {
				field("", v)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
