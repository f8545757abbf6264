package models

import "github.com/ralt/pkginfo/internal/pkginfo"

// PackageFile is a package archive together with its parsed .PKGINFO
type PackageFile struct {
	Info *pkginfo.Package

	// File information
	Filename  string
	Size      int64
	MD5Sum    string
	SHA256Sum string
}

// DirName returns the database entry directory, name-version
func (p *PackageFile) DirName() string {
	return p.Info.Name + "-" + p.Info.Version
}
