// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Ingest documents into the store",
		Long:  "Extract text from each file, split it into chunks, embed the chunks, and store them.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client, err := newOpenAIClient(cfg)
	if err != nil {
		return err
	}

	s, err := openStore(cfg, client)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	ing := newIngestor(cfg, s, client)
	out := cmd.OutOrStdout()

	for _, path := range args {
		ids, err := ing.IngestFile(cmd.Context(), path)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		if _, err := fmt.Fprintf(out, "%s: %d chunks stored\n", path, len(ids)); err != nil {
			return err
		}
	}

	return nil
}
