package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ralt/pkginfo/internal/archive"
	"github.com/ralt/pkginfo/internal/models"
	"github.com/ralt/pkginfo/internal/pkginfo"
	"github.com/ralt/pkginfo/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// LoadOptions controls how package archives are read
type LoadOptions struct {
	Concurrency int
	Strict      bool
}

// LoadPackage reads the .PKGINFO and checksums of one package archive
func LoadPackage(path string, strict bool) (*models.PackageFile, error) {
	checksums, err := utils.CalculateChecksums(path)
	if err != nil {
		return nil, &models.ToolError{
			Type:    models.ErrFileOp,
			Package: path,
			Err:     fmt.Errorf("failed to calculate checksums: %w", err),
		}
	}

	res, err := archive.ReadPKGINFO(path)
	if err != nil {
		return nil, &models.ToolError{
			Type:    models.ErrExtract,
			Package: path,
			Err:     err,
		}
	}

	info := res.Package
	if strict {
		info, err = res.Strict()
		if err != nil {
			return nil, &models.ToolError{Type: models.ErrPackageParse, Package: path, Err: err}
		}
	} else if info == nil {
		return nil, &models.ToolError{Type: models.ErrPackageParse, Package: path, Err: pkginfo.ErrMissingField}
	} else if !res.Complete() {
		logrus.WithFields(logrus.Fields{
			"package": filepath.Base(path),
			"line":    res.RemainderLine,
		}).Warn("Ignoring unrecognized .PKGINFO lines")
	}

	return &models.PackageFile{
		Info:      info,
		Filename:  path,
		Size:      checksums.Size,
		MD5Sum:    checksums.MD5,
		SHA256Sum: checksums.SHA256,
	}, nil
}

// LoadPackages reads all package archives in parallel. Packages that fail
// to load are logged and skipped; the result keeps the order of paths.
func LoadPackages(ctx context.Context, paths []string, opts LoadOptions) ([]models.PackageFile, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	loaded := make([]*models.PackageFile, len(paths))
	var mu sync.Mutex
	var failed int

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			logrus.Debugf("Parsing package: %s", path)
			pkg, err := LoadPackage(path, opts.Strict)
			if err != nil {
				logrus.Warnf("Failed to parse %s: %v", path, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			loaded[i] = pkg
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	packages := make([]models.PackageFile, 0, len(paths)-failed)
	for _, pkg := range loaded {
		if pkg != nil {
			packages = append(packages, *pkg)
		}
	}
	return packages, nil
}
