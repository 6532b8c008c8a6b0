// Package main is a command-line tool for inspecting mesh files and block
// definitions and rendering definitions to images without a window.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/blockview/internal/logger"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "meshtool",
	Short: "Inspect block meshes and definitions",
	Long: `meshtool reads the binary mesh files and XML block definitions of a ROM
directory. It prints headers and submesh tables, lists definitions with the
meshes they reference, and renders definitions to PNG or WebP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		return logger.Init(level, "")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
