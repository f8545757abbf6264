package models

// RepositoryConfig contains configuration for repository generation
type RepositoryConfig struct {
	// Input/Output
	InputDir  string
	OutputDir string

	// Repository metadata
	RepoName string   // Database name, <RepoName>.db.tar.zst
	Arches   []string // Architectures to publish; "any" packages land in each

	// Signing
	GPGKeyPath    string
	GPGPassphrase string

	// Parsing
	Concurrency int  // Packages parsed in parallel, 0 means one per CPU
	Strict      bool // Reject packages whose .PKGINFO has unrecognized lines

	// Keep packages already listed in the output database
	Incremental bool
}
