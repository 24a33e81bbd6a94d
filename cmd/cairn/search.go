// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cairn Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cairn-dev/cairn/internal/store"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search stored documents",
		Long:  "Embed the query and print the most similar stored chunks.",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().IntP("max-results", "n", 5, "maximum number of results")
	cmd.Flags().Float64("min-score", 0, "minimum similarity score in [0, 1]")
	cmd.Flags().String("source", "", "restrict to chunks from this source file")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	query, err := client.Embed(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	source, _ := cmd.Flags().GetString("source")

	req := store.SearchRequest{
		Query:      query,
		MaxResults: maxResults,
		MinScore:   minScore,
	}
	if source != "" {
		req.Filter = store.Eq("source", source)
	}

	result, err := s.Search(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(result.Matches) == 0 {
		_, err := fmt.Fprintln(out, "no matches")
		return err
	}

	for _, m := range result.Matches {
		text := "(no text)"
		if m.Segment != nil {
			text = snippet(m.Segment.Text, 120)
		}
		if _, err := fmt.Fprintf(out, "%.4f  %s  %s\n", m.Score, m.ID, text); err != nil {
			return err
		}
	}

	return nil
}

// snippet flattens whitespace and truncates to at most n runes.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}
