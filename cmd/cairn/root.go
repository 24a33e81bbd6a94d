// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cairn-dev/cairn/internal/config"
)

// NewRootCmd creates the root cairn command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cairn",
		Short:         "Cairn — document search over local embeddings",
		Long:          "Cairn ingests documents into a local SQLite vector store and answers questions against them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
			return nil
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newIngestCmd(),
		newSearchCmd(),
		newAskCmd(),
		newRemoveCmd(),
		newVersionCmd(),
	)

	return root
}

// setupLogging installs the default slog handler. Verbose mode lowers the
// level to debug; otherwise warnings and up, keeping command output clean.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig resolves the --config flag, falling back to cairn.yaml in
// the working directory when present. Defaults and env vars apply either
// way.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if _, err := os.Stat("cairn.yaml"); err == nil {
			path = "cairn.yaml"
		}
	}
	return config.Load(path)
}
