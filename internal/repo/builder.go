package repo

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ralt/pkginfo/internal/models"
	"github.com/ralt/pkginfo/internal/signer"
	"github.com/ralt/pkginfo/internal/utils"
	"github.com/sirupsen/logrus"
)

// DefaultArch is used when no architecture is configured
const DefaultArch = "x86_64"

// Builder creates pacman sync databases
type Builder struct {
	signer signer.Signer
}

// NewBuilder creates a new pacman repository builder. s may be nil for
// an unsigned repository.
func NewBuilder(s signer.Signer) *Builder {
	return &Builder{
		signer: s,
	}
}

// Build creates a pacman repository structure
func (b *Builder) Build(ctx context.Context, config *models.RepositoryConfig, packages []models.PackageFile) error {
	logrus.Info("Generating pacman repository...")

	if err := b.ValidatePackages(packages); err != nil {
		return err
	}

	for _, dup := range utils.DetectDuplicates(packages) {
		logrus.Warnf("Duplicate package %s in %s, keeping the first one", utils.PackageIdentity(dup), dup.Filename)
	}

	archPackages := groupByArch(config.Arches, packages)

	arches := make([]string, 0, len(archPackages))
	for arch := range archPackages {
		arches = append(arches, arch)
	}
	sort.Strings(arches)

	for _, arch := range arches {
		if err := ctx.Err(); err != nil {
			return err
		}
		pkgs := archPackages[arch]
		if config.Incremental {
			existing, err := loadExisting(filepath.Join(config.OutputDir, arch), DatabaseName(config))
			if err != nil {
				return fmt.Errorf("failed to read existing database for %s: %w", arch, err)
			}
			pkgs = mergePackages(existing, pkgs)
		}

		if err := b.buildForArch(config, arch, pkgs); err != nil {
			return fmt.Errorf("failed to generate for %s: %w", arch, err)
		}
	}

	if b.signer != nil {
		logrus.Info("Repository signed successfully")
	}

	logrus.Infof("Pacman repository generated successfully (%d packages)", len(packages))
	return nil
}

// groupByArch assigns packages to architectures. Packages built for "any"
// (or with no arch) are published in every configured architecture.
func groupByArch(configured []string, packages []models.PackageFile) map[string][]models.PackageFile {
	if len(configured) == 0 {
		configured = []string{DefaultArch}
	}

	seen := make(map[string]bool)
	archPackages := make(map[string][]models.PackageFile)

	for _, pkg := range packages {
		id := utils.PackageIdentity(pkg)
		if seen[id] {
			continue
		}
		seen[id] = true

		arch := pkg.Info.Arch
		if arch == "" || arch == "any" {
			for _, a := range configured {
				archPackages[a] = append(archPackages[a], pkg)
			}
			continue
		}
		archPackages[arch] = append(archPackages[arch], pkg)
	}

	return archPackages
}

// buildForArch generates the repository for a specific architecture
func (b *Builder) buildForArch(config *models.RepositoryConfig, arch string, packages []models.PackageFile) error {
	logrus.Infof("Generating for architecture: %s", arch)

	// Create directory structure: OutputDir/arch/
	archDir := filepath.Join(config.OutputDir, arch)
	if err := utils.EnsureDir(archDir); err != nil {
		return err
	}

	entries := make([]models.PackageFile, len(packages))
	for i, pkg := range packages {
		dstPath := filepath.Join(archDir, filepath.Base(pkg.Filename))
		if !utils.SamePath(pkg.Filename, dstPath) {
			if err := utils.CopyFile(pkg.Filename, dstPath); err != nil {
				return fmt.Errorf("failed to copy package: %w", err)
			}
		}

		// The database only records the basename
		entries[i] = pkg
		entries[i].Filename = filepath.Base(pkg.Filename)
	}

	dbName := DatabaseName(config)

	dbData, err := generateDatabase(entries)
	if err != nil {
		return fmt.Errorf("failed to generate database: %w", err)
	}

	dbPath := filepath.Join(archDir, dbName+".db.tar.zst")
	if err := utils.WriteFile(dbPath, dbData, 0644); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}

	// pacman downloads <repo>.db
	if err := utils.WriteFile(filepath.Join(archDir, dbName+".db"), dbData, 0644); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}

	if b.signer != nil {
		if err := b.signRepository(archDir, dbName, dbData, entries); err != nil {
			return err
		}
	}

	logrus.Infof("Generated repository for %s (%d packages)", arch, len(entries))
	return nil
}

func (b *Builder) signRepository(archDir, dbName string, dbData []byte, packages []models.PackageFile) error {
	signature, err := b.signer.SignDetached(dbData)
	if err != nil {
		return &models.ToolError{Type: models.ErrSigning, Err: fmt.Errorf("failed to sign database: %w", err)}
	}

	for _, name := range []string{dbName + ".db.tar.zst.sig", dbName + ".db.sig"} {
		if err := utils.WriteFile(filepath.Join(archDir, name), signature, 0644); err != nil {
			return fmt.Errorf("failed to write database signature: %w", err)
		}
	}

	// Sign each package file
	for _, pkg := range packages {
		pkgPath := filepath.Join(archDir, pkg.Filename)
		pkgData, err := os.ReadFile(pkgPath)
		if err != nil {
			return fmt.Errorf("failed to read package %s: %w", pkg.Filename, err)
		}

		pkgSig, err := b.signer.SignDetached(pkgData)
		if err != nil {
			return &models.ToolError{
				Type:    models.ErrSigning,
				Package: pkg.Filename,
				Err:     fmt.Errorf("failed to sign package: %w", err),
			}
		}

		if err := utils.WriteFile(pkgPath+".sig", pkgSig, 0644); err != nil {
			return fmt.Errorf("failed to write package signature: %w", err)
		}
	}

	pubKey, err := b.signer.GetPublicKey()
	if err != nil {
		return &models.ToolError{Type: models.ErrSigning, Err: fmt.Errorf("failed to export public key: %w", err)}
	}
	return utils.WriteFile(filepath.Join(archDir, dbName+".key"), pubKey, 0644)
}

// generateDatabase creates the pacman database (.db.tar.zst)
func generateDatabase(packages []models.PackageFile) ([]byte, error) {
	// Create in-memory tar archive
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)

	for _, pkg := range packages {
		descContent := generateDescFile(pkg)

		dirName := pkg.DirName() + "/"
		err := tw.WriteHeader(&tar.Header{
			Name:     dirName,
			Mode:     0755,
			Typeflag: tar.TypeDir,
		})
		if err != nil {
			return nil, err
		}

		err = tw.WriteHeader(&tar.Header{
			Name: dirName + "desc",
			Mode: 0644,
			Size: int64(len(descContent)),
		})
		if err != nil {
			return nil, err
		}

		if _, err := tw.Write(descContent); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}

	return utils.ZstdCompress(tarBuf.Bytes())
}

// DatabaseName returns the sanitized database name for a configuration
func DatabaseName(config *models.RepositoryConfig) string {
	if config.RepoName == "" {
		return "custom"
	}
	return sanitizeRepoName(config.RepoName)
}

// sanitizeRepoName sanitizes a repository name for use in filenames
func sanitizeRepoName(name string) string {
	name = strings.ToLower(name)
	// Replace any character that's not alphanumeric or hyphen
	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		} else {
			result.WriteRune('-')
		}
	}
	return result.String()
}

// ValidatePackages checks that packages carry what a database entry needs
func (b *Builder) ValidatePackages(packages []models.PackageFile) error {
	for _, pkg := range packages {
		if pkg.Info == nil {
			return fmt.Errorf("package has no metadata: %s", pkg.Filename)
		}
		if pkg.Info.Name == "" {
			return fmt.Errorf("package missing name: %s", pkg.Filename)
		}
		if pkg.Info.Version == "" {
			return fmt.Errorf("package missing version: %s", pkg.Filename)
		}
		if !strings.Contains(filepath.Base(pkg.Filename), ".pkg.tar") {
			return fmt.Errorf("invalid package filename: %s", pkg.Filename)
		}
	}
	return nil
}
