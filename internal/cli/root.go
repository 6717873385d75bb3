// Package cli wires the matlab-language-server command line: flags for
// the config file, the MATLAB helper directory, and the serve loop
// itself, in the teacher's cobra shape.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"matlab-language-server/internal/common"
	"matlab-language-server/internal/config"
	"matlab-language-server/internal/lspserver"
)

var (
	configPath string
	helperPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "matlab-language-server",
	Short: "Language Server Protocol implementation for MATLAB",
	Long: `matlab-language-server speaks LSP 3.17 over stdio to editors and
delegates MATLAB-specific analysis (linting, formatting, completion) to a
subordinate MATLAB interpreter process over a JSON message bus.

Configuration is read from matlab-language-server.yaml in the workspace
root, or from the file named by --config.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to matlab-language-server.yaml (default: workspace root)")
	rootCmd.PersistentFlags().StringVar(&helperPath, "helper-path", "", "directory containing the server's bundled MATLAB helper code")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "raise every logger to debug level")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	if cfg.Verbose {
		common.SetGlobalLevel(common.LogDebug)
	}

	server := lspserver.NewServer(cfg, helperPath)
	return server.Serve(os.Stdin, os.Stdout)
}

// Execute adds all child commands to the root command and runs it,
// returning the error a caller should translate into an exit code.
func Execute() error {
	return rootCmd.Execute()
}
