package cmd

import (
	"github.com/spf13/cobra"
)

// Global flags
var configPath string

// RootCmd is the rayscan entry point
var RootCmd = &cobra.Command{
	Use:   "rayscan",
	Short: "Find leftover ray() debug calls in PHP code",
	Long: `rayscan scans a PHP codebase for calls to the ray() debugging helper
and reports where they occur, so they can be removed before shipping.

It matches plain calls such as ray() and rd(), method calls such as
$this->ray(), and any static call on the Ray class.`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default .rayscan.yaml in the working directory)")
}
