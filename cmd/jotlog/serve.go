package main

import (
	"github.com/spf13/cobra"

	"github.com/jotlog/jotlog/jotlogservice"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the jotlog HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return jotlogservice.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
