package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print the meeting_ingest version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("meeting_ingest %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCommand)
}
