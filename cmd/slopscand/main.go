// Command slopscand is the CLI entry point for the code-quality analysis
// background service: it loads configuration, wires the Findings Store,
// External Tool Runner, LLM Router, and Orchestrator together, and exposes
// scan/status/findings/ack/fix/false-positive/backends/tools subcommands.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configPath string

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "slopscand",
		Short:        "slopscand - background code-quality analysis service",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "slopscan.yaml", "path to the configuration file")

	root.AddCommand(
		newScanCmd(),
		newStatusCmd(),
		newFindingsCmd(),
		newAckCmd(),
		newFixCmd(),
		newFalsePositiveCmd(),
		newBackendsCmd(),
		newToolsCmd(),
	)
	return root
}
