package cli

import (
	"context"
	"fmt"

	"github.com/ralt/pkginfo/internal/config"
	"github.com/ralt/pkginfo/internal/models"
	"github.com/ralt/pkginfo/internal/repo"
	"github.com/ralt/pkginfo/internal/scanner"
	"github.com/ralt/pkginfo/internal/signer"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var flags models.RepositoryConfig
	var configPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a pacman repository",
		Long: `Scans input directory for pacman packages, reads their .PKGINFO
metadata and generates a sync database per architecture, with
optional OpenPGP signatures.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := resolveConfig(cmd.Flags(), configPath, flags)
			if err != nil {
				return err
			}

			// Validate configuration
			if err := validateConfig(&config); err != nil {
				return err
			}

			logrus.Info("Starting repository generation...")
			logrus.Debugf("Configuration: %+v", redact(config))

			// Run generation
			return runGeneration(cmd.Context(), &config)
		},
	}

	// Input/Output flags
	cmd.Flags().StringVarP(&flags.InputDir, "input-dir", "i", ".", "Input directory to scan")
	cmd.Flags().StringVarP(&flags.OutputDir, "output-dir", "o", "./repo", "Output directory")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to an INI configuration file")

	// GPG signing flags
	cmd.Flags().StringVarP(&flags.GPGKeyPath, "gpg-key", "k", "", "Path to GPG private key")
	cmd.Flags().StringVarP(&flags.GPGPassphrase, "gpg-passphrase", "p", "", "GPG key passphrase")

	// Repository metadata flags
	cmd.Flags().StringVar(&flags.RepoName, "repo-name", "custom", "Repository (database) name")
	cmd.Flags().StringSliceVar(&flags.Arches, "arch", []string{repo.DefaultArch}, "Architectures to publish")

	// Parsing flags
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", 0, "Packages parsed in parallel (0 means one per CPU)")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "Reject packages with unrecognized .PKGINFO lines")
	cmd.Flags().BoolVar(&flags.Incremental, "incremental", false, "Keep packages already in the output database")

	return cmd
}

// resolveConfig merges the configuration file, if any, with the command
// line. Flags set explicitly win over the file.
func resolveConfig(fs *pflag.FlagSet, configPath string, flags models.RepositoryConfig) (models.RepositoryConfig, error) {
	if configPath == "" {
		return flags, nil
	}

	merged := flags
	if err := config.Load(configPath, &merged); err != nil {
		return merged, &models.ToolError{Type: models.ErrInvalidConfig, Err: err}
	}

	overrides := map[string]func(){
		"input-dir":      func() { merged.InputDir = flags.InputDir },
		"output-dir":     func() { merged.OutputDir = flags.OutputDir },
		"gpg-key":        func() { merged.GPGKeyPath = flags.GPGKeyPath },
		"gpg-passphrase": func() { merged.GPGPassphrase = flags.GPGPassphrase },
		"repo-name":      func() { merged.RepoName = flags.RepoName },
		"arch":           func() { merged.Arches = flags.Arches },
		"concurrency":    func() { merged.Concurrency = flags.Concurrency },
		"strict":         func() { merged.Strict = flags.Strict },
		"incremental":    func() { merged.Incremental = flags.Incremental },
	}
	for name, apply := range overrides {
		if fs.Changed(name) {
			apply()
		}
	}

	logrus.Debugf("Loaded configuration from %s", configPath)
	return merged, nil
}

func validateConfig(config *models.RepositoryConfig) error {
	if config.InputDir == "" {
		return &models.ToolError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("input-dir is required"),
		}
	}

	if config.OutputDir == "" {
		return &models.ToolError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("output-dir is required"),
		}
	}

	if config.Concurrency < 0 {
		return &models.ToolError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("concurrency must not be negative"),
		}
	}

	if config.GPGPassphrase != "" && config.GPGKeyPath == "" {
		return &models.ToolError{
			Type: models.ErrInvalidConfig,
			Err:  fmt.Errorf("gpg-passphrase requires gpg-key"),
		}
	}

	return nil
}

func redact(config models.RepositoryConfig) models.RepositoryConfig {
	if config.GPGPassphrase != "" {
		config.GPGPassphrase = "***"
	}
	return config
}

func runGeneration(ctx context.Context, config *models.RepositoryConfig) error {
	// Step 1: Scan for packages
	logrus.Infof("Scanning directory: %s", config.InputDir)
	sc := scanner.NewFileSystemScanner()
	scannedPackages, err := sc.Scan(ctx, config.InputDir)
	if err != nil {
		return &models.ToolError{
			Type: models.ErrFileOp,
			Err:  fmt.Errorf("failed to scan directory: %w", err),
		}
	}

	if len(scannedPackages) == 0 {
		logrus.Warn("No packages found in input directory")
		return nil
	}

	// Step 2: Parse packages
	paths := make([]string, len(scannedPackages))
	for i, scanned := range scannedPackages {
		paths[i] = scanned.Path
	}

	packages, err := repo.LoadPackages(ctx, paths, repo.LoadOptions{
		Concurrency: config.Concurrency,
		Strict:      config.Strict,
	})
	if err != nil {
		return err
	}
	if len(packages) == 0 {
		logrus.Warn("No package could be parsed")
		return nil
	}
	logrus.Infof("Parsed %d of %d packages", len(packages), len(scannedPackages))

	// Step 3: Initialize signer
	var s signer.Signer
	if config.GPGKeyPath != "" {
		gpgSigner, err := signer.NewGPGSigner(config.GPGKeyPath, config.GPGPassphrase)
		if err != nil {
			return &models.ToolError{
				Type: models.ErrSigning,
				Err:  fmt.Errorf("failed to initialize GPG signer: %w", err),
			}
		}
		s = gpgSigner
		logrus.Info("GPG signer initialized")
	}

	// Step 4: Generate the repository
	if err := repo.NewBuilder(s).Build(ctx, config, packages); err != nil {
		return &models.ToolError{
			Type: models.ErrDatabase,
			Err:  fmt.Errorf("failed to generate repository: %w", err),
		}
	}

	logrus.Info("Repository generation completed successfully!")
	logrus.Infof("Output directory: %s", config.OutputDir)

	return nil
}
