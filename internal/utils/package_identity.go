package utils

import (
	"fmt"

	"github.com/ralt/pkginfo/internal/models"
)

// PackageIdentity returns the name:version:arch key of a package
func PackageIdentity(pkg models.PackageFile) string {
	return fmt.Sprintf("%s:%s:%s", pkg.Info.Name, pkg.Info.Version, pkg.Info.Arch)
}

// DetectDuplicates returns every package whose identity was already seen
// earlier in packages
func DetectDuplicates(packages []models.PackageFile) []models.PackageFile {
	seen := make(map[string]bool)

	var duplicates []models.PackageFile
	for _, pkg := range packages {
		id := PackageIdentity(pkg)
		if seen[id] {
			duplicates = append(duplicates, pkg)
			continue
		}
		seen[id] = true
	}
	return duplicates
}
