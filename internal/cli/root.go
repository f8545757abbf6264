package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkginfo",
		Short: "Inspect pacman package metadata and build sync databases",
		Long: `Pkginfo reads the .PKGINFO metadata of pacman packages.

It can print the metadata of a single package or of a raw .PKGINFO
file, and build a static pacman repository (sync database plus
optional OpenPGP signatures) from a directory of packages.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	rootCmd.AddCommand(NewShowCmd())
	rootCmd.AddCommand(NewGenerateCmd())

	return rootCmd
}
