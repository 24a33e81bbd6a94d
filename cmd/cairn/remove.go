// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	cairnerr "github.com/cairn-dev/cairn/pkg/errors"
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm [id]...",
		Short: "Remove stored chunks",
		Long:  "Remove chunks by id, by source file, or clear the store entirely.",
		RunE:  runRemove,
	}

	cmd.Flags().String("source", "", "remove every chunk ingested from this source file")
	cmd.Flags().Bool("all", false, "remove everything in the store")

	return cmd
}

func runRemove(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	all, _ := cmd.Flags().GetBool("all")

	if !all && source == "" && len(args) == 0 {
		return cairnerr.New(cairnerr.CodeCLIInputInvalid, "nothing to remove: pass ids, --source, or --all")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Removal needs no embedder; open the store as configured.
	s, err := openStore(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	out := cmd.OutOrStdout()

	switch {
	case all:
		if err := s.RemoveEverything(cmd.Context()); err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, "store cleared")
		return err
	case source != "":
		ing := newIngestor(cfg, s, nil)
		if err := ing.RemoveSource(cmd.Context(), source); err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "removed chunks from %s\n", source)
		return err
	default:
		if err := s.RemoveAll(cmd.Context(), args); err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "removed %d ids\n", len(args))
		return err
	}
}
