// Package main provides the entry point for the meeting ingestion CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "meeting_ingest",
	Short: "Civic meeting ingestion pipeline",
	Long:  "Fetches published government meeting agendas and minutes, extracts and categorizes them, and persists them for subscription matching.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
