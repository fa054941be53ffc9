// Package cli implements the LogWise command-line interface using Cobra.
// Each subcommand maps to one workflow: analyze, serve, setup, pull,
// models, history, config.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logwise-ai/logwise/internal/daemon"
)

var rootCmd = &cobra.Command{
	Use:   "logwise",
	Short: "LogWise — AI-powered log analysis and RCA, fully local",
	Long: `LogWise analyzes log files with a locally running LLM and produces
root cause analysis reports. No log line ever leaves your machine.

Typical flow:
  logwise setup                 install the model runtime and pull the model
  logwise analyze -f app.log    analyze a file from the terminal
  logwise serve                 start the upload-and-analyze web UI`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version
	daemon.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
