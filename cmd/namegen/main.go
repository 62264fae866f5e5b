// Command namegen learns name definitions and generates names from them,
// either from the command line or as an HTTP service backed by SQLite.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// VersionInfo defines the structure for build/version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func currentVersion() VersionInfo {
	return VersionInfo{Version: Version, Commit: Commit, BuildDate: BuildDate}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "namegen",
		Short: "Learn from sample names and generate new ones",
		Long: `namegen learns Markov, grammar, and word list parts from sample
names and combines them with format templates into full names.

Names can be generated directly from a YAML definition, or stored in a
SQLite database and served over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP name service",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return serve(configPath)
		},
	}
	serveCmd.Flags().String("config", "./config.json", "Path to the JSON config file")
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			v := currentVersion()
			fmt.Fprintf(cmd.OutOrStdout(), "namegen %s (commit %s, built %s)\n", v.Version, v.Commit, v.BuildDate)
		},
	})
	return rootCmd
}
