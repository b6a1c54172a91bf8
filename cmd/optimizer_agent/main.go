// Package main provides the entry point for the content optimizer CLI and
// HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "optimizer_agent",
	Short: "Content Optimizer",
	Long:  "Content Optimizer scores drafts against SERP-derived benchmarks and applies AI-authored fixes, either as a one-shot CLI run or as a session-based REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
