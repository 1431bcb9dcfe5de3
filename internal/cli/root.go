// Package cli wires the hiveboard commands: the API server and the
// terminal dashboard.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hiveboard/hiveboard/pkg/config"
)

var (
	// Version information (set by build)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// Global flags
	cfgFile string

	// Loaded configuration, available to all subcommands
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hiveboard",
	Short: "HIVEBOARD - swarm monitoring dashboard",
	Long: `HIVEBOARD runs a multi-agent hive coordinator with an HTTP API and a
terminal dashboard that watches it.

Run the server:
  hiveboard serve

Watch a running server:
  hiveboard dash
  hiveboard dash --api http://hive.internal:8080`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "hiveboard.yaml", "config file path")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("HIVEBOARD %s\n", Version)
		fmt.Printf("Build: %s\n", BuildTime)
		fmt.Printf("Commit: %s\n", GitCommit)
	},
}
