package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jotlog",
	Short: "Markdown-backed knowledge entry store with a local web API",
	Long: `jotlog keeps captured entries in per-project markdown files and
serves them to a local viewer and capture extension over HTTP.`,
}

// Execute runs the CLI. Called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
